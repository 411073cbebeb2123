package main

import (
    "log"

    "github.com/spf13/cobra"

    ftlcli "github.com/amirimatin/go-ftlconn/pkg/cli"
)

func main() {
    if err := newRoot().Execute(); err != nil {
        log.Fatal(err)
    }
}

func newRoot() *cobra.Command {
    root := &cobra.Command{
        Use:           "ftlconnctl",
        Short:         "create and inspect FTL ingest connections",
        SilenceUsage:  true,
        SilenceErrors: true,
    }
    ftlcli.AddAll(root)
    return root
}
