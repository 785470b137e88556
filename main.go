package main

import "github.com/ValentinKolb/dPool/cmd"

func main() {
	cmd.Execute()
}
