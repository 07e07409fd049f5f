package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/k0kubun/pp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/navbuilder/internal/build"
	"git.home.luguber.info/inful/navbuilder/internal/nav"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Format  string `short:"f" help:"Output format (json, yaml, pp)" enum:"json,yaml,pp" default:"json"`
	Tree    string `help:"Tree to print (all, navbar, sidebar)" enum:"all,navbar,sidebar" default:"all"`
	Route   string `help:"Print only the sidebar shown on this route"`
	NoColor bool   `name:"no-color" help:"Disable colors in pp output"`
}

// resolvedTrees is the document printed by resolve.
type resolvedTrees struct {
	Navbar  []nav.ResolvedRoute `json:"navbar,omitempty"`
	Sidebar nav.Sidebars        `json:"sidebar,omitempty"`
}

// Run resolves without collecting metadata. Dangling links are reported but
// do not stop the trees from being printed.
func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	c := *cfg
	c.Metadata.Enabled = false
	c.Content.StrictLinks = false

	res, err := build.NewService().Run(context.Background(), build.Request{Config: &c, Trigger: "resolve", DryRun: true})
	if err != nil {
		return err
	}
	printDangling(g, res.Dangling)

	var doc any
	switch {
	case r.Route != "":
		sb, ok := res.Sidebars.For(r.Route)
		if !ok {
			return ferrors.NotFoundError("no sidebar covers route").WithContext("route", r.Route).Build()
		}
		doc = nav.Sidebars{sb}
	case r.Tree == "navbar":
		doc = res.Navbar
	case r.Tree == "sidebar":
		doc = res.Sidebars
	default:
		doc = resolvedTrees{Navbar: res.Navbar, Sidebar: res.Sidebars}
	}
	return r.print(g.out(), doc)
}

func (r *ResolveCmd) print(w io.Writer, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ferrors.InternalError("encode resolved navigation").WithCause(err).Build()
	}
	switch r.Format {
	case "yaml":
		out, err := jsonToYAML(data)
		if err != nil {
			return ferrors.InternalError("encode resolved navigation as yaml").WithCause(err).Build()
		}
		_, err = w.Write(out)
		return err
	case "pp":
		pp.ColoringEnabled = !r.NoColor
		_, err := pp.Fprintln(w, doc)
		return err
	default:
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// jsonToYAML re-encodes JSON as block-style YAML, preserving key order.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
