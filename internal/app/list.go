package app

import (
	"fmt"
	"io"
	"strings"
)

// List writes every scope of the tree with its tasks. Listing instantiates
// generators, which runs their factories.
func (a *App) List(w io.Writer) error {
	if err := writeScope(w, a.root.Namespace(), a.root.Tasks()); err != nil {
		return err
	}
	for _, ns := range a.root.Namespaces() {
		g, err := a.root.GetGenerator(ns)
		if err != nil {
			return err
		}
		if err := writeScope(w, ns, g.Tasks()); err != nil {
			return err
		}
	}
	return nil
}

func writeScope(w io.Writer, ns string, tasks []string) error {
	_, err := fmt.Fprintf(w, "%s: %s\n", ns, strings.Join(tasks, ", "))
	return err
}
