package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/geocoder89/devevent/internal/auth"
)

// Reads a password from stdin and prints its bcrypt hash for ADMIN_PASSWORD_HASH.
func main() {
	reader := bufio.NewReader(os.Stdin)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "read password:", err)
		os.Exit(1)
	}

	plain := strings.TrimRight(line, "\r\n")
	if plain == "" {
		fmt.Fprintln(os.Stderr, "password must not be empty")
		os.Exit(1)
	}

	hash, err := auth.HashAdminPassword(plain)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
