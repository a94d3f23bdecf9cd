package main

import "github.com/matthieukhl/orderdesk/internal/cmd"

func main() {
	cmd.Execute()
}
