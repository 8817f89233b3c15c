package main

import "github.com/appcanary/packager/cmd/appcanary-packager/cmd"

func main() {
	cmd.Execute()
}
