/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/todos-backend/apiserver/cmd"

func main() {
	cmd.Execute()
}
