package main

import "github.com/goplus/extbuild/cmd/extbuild/internal"

func main() {
	internal.Execute()
}
