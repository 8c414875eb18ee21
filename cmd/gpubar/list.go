package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpubar/internal/drm"
)

type listEntry struct {
	Index     int    `json:"index"`
	Card      string `json:"card"`
	Vendor    string `json:"vendor"`
	Model     string `json:"model"`
	PoweredOn bool   `json:"powered_on"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List detected GPUs",
	Long:  "Enumerate DRM cards under /sys/class/drm with their vendor, model, and power state.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	cards, err := drm.Scan(drm.SysfsRoot)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return fmt.Errorf("no DRM cards found under %s", drm.SysfsRoot)
	}

	entries := make([]listEntry, 0, len(cards))
	for _, c := range cards {
		entries = append(entries, listEntry{
			Index:     c.Index,
			Card:      c.Name,
			Vendor:    string(c.Vendor),
			Model:     c.Model(),
			PoweredOn: c.PoweredOn(),
		})
	}

	if jsonOut {
		return printJSON(entries)
	}

	for _, e := range entries {
		power := "on"
		if !e.PoweredOn {
			power = "off"
		}
		fmt.Printf("%-7s %-8s %-40s power:%s\n", e.Card, e.Vendor, e.Model, power)
	}
	return nil
}
