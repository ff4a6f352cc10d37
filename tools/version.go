package tools

import (
	"fmt"
	"runtime"

	"github.com/richardtsai/subnetcalc/lib"
)

func init() {
	allTools = append(allTools, versionTool{})
}

type versionTool struct{}

func (versionTool) Name() string {
	return "version"
}

func (versionTool) Description() string {
	return "Print version information"
}

func (versionTool) Run(args []string) {
	fmt.Printf("subnetcalc\nVersion: %s\nBuilt on: %s\nRuntime: %s %s/%s\n",
		lib.SubnetCalcVersion, lib.SubnetCalcBuiltTime,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
