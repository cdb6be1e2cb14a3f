package main

import "github.com/ValentinKolb/dSS/cmd"

func main() {
	cmd.Execute()
}
