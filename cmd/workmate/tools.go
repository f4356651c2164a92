package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trungvq/workmate/internal/ui"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Liệt kê các công cụ đã đăng ký",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.cleanup()

		renderer := ui.NewRenderer()
		items := make([][2]string, 0, len(rt.registry.List()))
		for _, spec := range rt.registry.List() {
			items = append(items, [2]string{spec.Name, spec.Description})
		}
		fmt.Println(renderer.ToolList(items))
		return nil
	},
}
