// Command walletcheck validates wallet addresses given as arguments or on stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
)

func main() {
	flag.Parse()

	addrs := flag.Args()
	if len(addrs) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			addrs = append(addrs, scanner.Text())
		}
	}

	bad := 0
	for _, addr := range addrs {
		if reason := Classify(addr); reason != "" {
			bad++
			fmt.Printf("INVALID %q: %s\n", addr, reason)
			continue
		}
		fmt.Printf("ok      %s\n", addr)
	}
	if bad > 0 {
		os.Exit(1)
	}
}
