package main

import (
	"github.com/l0lsec/PodInsights/cmd"
)

func main() {
	cmd.Execute()
}
