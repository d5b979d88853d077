// askdata answers natural-language questions about CSV, JSON and SQL data
// from the command line.
//
// Usage:
//
//	askdata ask -f sales.csv "total revenue by region"
//	askdata chat -s warehouse
//	askdata discover -f sales.csv -o yaml
//	askdata init
//
// The engine runs locally. Questions it cannot answer are passed to Gemini
// only when GEMINI_API_KEY is set, and then only a column summary is sent.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
