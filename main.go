package main

import "github.com/elimelt/ha-redis/cmd"

func main() {
	cmd.Execute()
}
