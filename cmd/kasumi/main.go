package main

import "go.minekube.com/kasumi/pkg/cmd/kasumi"

func main() {
	kasumi.Execute()
}
