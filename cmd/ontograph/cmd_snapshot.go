// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ontograph/services/ontograph/storage/badger"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored ontology snapshots",
		Long: `Snapshots store a sealed ontology with its annotations in the local
database (storage.path in the config) so that later commands can use
--snapshot NAME instead of parsing the OBO and GAF files again.`,
	}
	cmd.AddCommand(
		newSnapshotSaveCmd(a),
		newSnapshotListCmd(a),
		newSnapshotDeleteCmd(a),
	)
	return cmd
}

func newSnapshotSaveCmd(a *app) *cobra.Command {
	var src ontologySource
	cmd := &cobra.Command{
		Use:     "save NAME",
		Short:   "Load source files and store them as a snapshot",
		Example: "  ontograph snapshot save go-2026-01 --obo go-basic.obo --gaf goa_human.gaf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := src.load(ctx, a)
			if err != nil {
				return err
			}

			var info badger.SnapshotInfo
			err = a.withStore(func(store *badger.SnapshotStore) error {
				info, err = store.Save(ctx, args[0], o)
				return err
			})
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if a.jsonOutput {
				return p.JSON(info)
			}
			p.Success(fmt.Sprintf("saved snapshot %s (%d terms, %d entities)", info.Name, info.Terms, info.Entities))
			return nil
		},
	}
	src.register(cmd, false)
	return cmd
}

func newSnapshotListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var infos []badger.SnapshotInfo
			err := a.withStore(func(store *badger.SnapshotStore) error {
				var err error
				infos, err = store.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if a.jsonOutput {
				if infos == nil {
					infos = []badger.SnapshotInfo{}
				}
				return p.JSON(infos)
			}
			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{
					info.Name,
					info.CreatedAt.Format(time.RFC3339),
					strconv.Itoa(info.Terms),
					strconv.Itoa(info.Entities),
					strconv.Itoa(info.Edges),
					strconv.Itoa(info.Bytes),
				}
			}
			p.Table([]string{"name", "created", "terms", "entities", "edges", "bytes"}, rows)
			return nil
		},
	}
}

func newSnapshotDeleteCmd(a *app) *cobra.Command {
	var missingOK bool
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.withStore(func(store *badger.SnapshotStore) error {
				return store.Delete(cmd.Context(), args[0])
			})
			if errors.Is(err, badger.ErrSnapshotNotFound) && missingOK {
				err = nil
			}
			if err != nil {
				return err
			}
			if !a.jsonOutput {
				a.printer(cmd).Success("deleted snapshot " + args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&missingOK, "missing-ok", false, "Do not fail when the snapshot does not exist")
	return cmd
}
