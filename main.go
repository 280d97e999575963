package main

import "github.com/XiaoShengSPiano/test-tools/cmd"

func main() {
	cmd.Execute()
}
