package main

import "yashubustudio/clinicalreport/internal/cli"

func main() {
	cli.Execute()
}
