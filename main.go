package main

import (
	"context"
	"fmt"
	"os"

	"fjacquet/stock-categorizer/cmd/batch"
	"fjacquet/stock-categorizer/cmd/classify"
	modelscmd "fjacquet/stock-categorizer/cmd/models"
	"fjacquet/stock-categorizer/cmd/root"
	"fjacquet/stock-categorizer/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(modelscmd.Cmd)
}

func main() {
	if err := root.Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
