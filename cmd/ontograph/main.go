// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command ontograph loads ontologies and labeled graphs and answers
// closure, depth and traversal queries over them.
//
// Usage:
//
//	ontograph stats --obo go-basic.obo --gaf goa_human.gaf
//	ontograph depth GO:0008150 --obo go-basic.obo
//	ontograph entities GO:0006915 --snapshot go-2026-01
//	ontograph graph bfs Dressing.sif underwear
//	ontograph graph shortest-path Bellman.tab C
//	ontograph snapshot save go-2026-01 --obo go-basic.obo --gaf goa_human.gaf
//	ontograph serve --snapshot go-2026-01
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
