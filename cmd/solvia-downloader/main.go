package main

import "github.com/solvia-downloader/solvia/cmd"

func main() {
	cmd.Execute()
}
