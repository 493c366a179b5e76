/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/eldhoz-sb/Audio-Player/cmd"

func main() {
	cmd.Execute()
}
