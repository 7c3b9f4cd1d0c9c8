package main

import "github.com/thereayou/pingme/internal/server"

func main() {
	server.NewServer().Run()
}
