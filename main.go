package main

import (
	"remold-service/cmd"
)

func main() {
	cmd.Execute()
}
