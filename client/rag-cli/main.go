package main

import "PDFChat/client/rag-cli/cmd"

func main() {
	cmd.Execute()
}
