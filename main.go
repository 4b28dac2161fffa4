// Package main is entrypoint for the application
package main

import (
	"fmt"

	"meshroom/cmd"
)

func main() {
	cmd.Run()
	fmt.Println("meshroom end")
}
