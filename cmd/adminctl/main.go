package main

import "github.com/imrishuroy/go-shop-admin/cmd/adminctl/commands"

func main() {
	commands.Execute()
}
