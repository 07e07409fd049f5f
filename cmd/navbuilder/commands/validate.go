package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/navbuilder/internal/build"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	res, err := build.NewService().Run(context.Background(), build.Request{Config: cfg, Trigger: "validate", DryRun: true})
	printDangling(g, res.Dangling)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "configuration OK: %d navbar routes, %d sidebar routes in %d sidebars\n",
		res.Report.NavbarRoutes, res.Report.SidebarRouteTotal(), len(res.Sidebars))
	return nil
}
