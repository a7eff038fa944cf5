package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/metrics"
)

var (
	statusJSON    bool
	statusDiagram bool
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show content providers and component state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		sess, err := newSession(metrics.NoopRecorder{})
		if err != nil {
			return err
		}

		st := sess.scribe.Content.Status()
		issues := sess.scribe.Content.ValidateConfiguration()

		switch {
		case statusJSON:
			states := map[string]any{}
			for _, c := range sess.scribe.Components() {
				if intro, ok := c.(introspection.Introspectable); ok {
					states[c.ComponentType()] = intro.State()
				}
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"components": states, "issues": issues})
		case statusDiagram:
			cfg := introspection.DefaultDiagramConfig()
			cfg.SecondaryID = "providers"
			cfg.SecondaryLabel = "Content Providers"
			fmt.Fprintln(w, introspection.TreeDiagram(buildStatusTree(sess, st), cfg))
			return nil
		}

		gate := "enabled"
		if !st.Enabled {
			gate = "disabled"
		}
		fmt.Fprintf(w, "Content generation: %s\n", gate)
		fmt.Fprintf(w, "Active provider:    %s\n", st.Active)
		if st.Preferred != "" {
			fmt.Fprintf(w, "Preferred provider: %s\n", st.Preferred)
		}
		fmt.Fprintln(w, "Providers:")
		if len(st.Order) == 0 {
			fmt.Fprintln(w, "  (none registered, placeholder text is used)")
		}
		for _, name := range st.Order {
			p := st.Providers[name]
			avail := "available"
			if !p.Available {
				avail = "unavailable"
			}
			kinds := "all kinds"
			if p.KindCount > 0 {
				kinds = strings.Join(p.Kinds, ", ")
			}
			fmt.Fprintf(w, "  %-12s %-11s %s\n", name, avail, kinds)
		}
		for _, issue := range issues {
			fmt.Fprintln(w, issue)
		}
		return nil
	},
}

type statusNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []statusNode
}

func buildStatusTree(sess *session, st content.Status) statusNode {
	providers := make([]statusNode, 0, len(st.Order))
	for _, name := range st.Order {
		p := st.Providers[name]
		status := "stopped"
		switch {
		case name == st.Active:
			status = "running"
		case p.Available:
			status = "suspended"
		}
		providers = append(providers, statusNode{
			Name:   name,
			Status: status,
			Metadata: map[string]string{
				"type":  p.Description.Type,
				"kinds": strconv.Itoa(p.KindCount),
			},
		})
	}

	gate := "running"
	if !st.Enabled {
		gate = "stopped"
	}

	root := statusNode{
		Name:     "Scribe",
		Status:   "running",
		Metadata: map[string]string{"type": "process", "output": sess.settings.OutputRoot},
	}
	for _, c := range sess.scribe.Components() {
		node := statusNode{
			Name:     c.ComponentType(),
			Status:   "running",
			Metadata: map[string]string{"type": "component"},
		}
		if c.ComponentType() == "content-manager" {
			node.Status = gate
			node.Metadata["active"] = st.Active
			node.Children = providers
		}
		root.Children = append(root.Children, node)
	}
	return root
}

func init() {
	addContentFlags(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print component state as JSON")
	statusCmd.Flags().BoolVar(&statusDiagram, "diagram", false, "Print a Mermaid diagram of the components")
	rootCmd.AddCommand(statusCmd)
}
