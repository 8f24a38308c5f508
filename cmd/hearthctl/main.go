// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command hearthctl is the operator tool for the Hearth membership store.
package main

import (
	"os"

	"github.com/taibuivan/hearth/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
