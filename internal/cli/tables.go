//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-etl/internal/model"
)

type tableSchema struct {
	name        string
	columns     []model.Column
	partitionBy []string
}

var tableSchemas = []tableSchema{
	{model.TableSongs, model.SongColumns, model.SongPartitions},
	{model.TableArtists, model.ArtistColumns, nil},
	{model.TableUsers, model.UserColumns, nil},
	{model.TableTime, model.TimeColumns, model.TimePartitions},
	{model.TableSongplays, model.SongplayColumns, model.SongplayPartitions},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the output tables",
	Long: `List the tables built by a run with their columns and partition
columns. Partition columns become key=value directories in Parquet output
and are not stored inside the files.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Output tables:")
		for _, t := range tableSchemas {
			cmd.Println()
			if len(t.partitionBy) > 0 {
				cmd.Printf("%s (partitioned by %s)\n", t.name, strings.Join(t.partitionBy, ", "))
			} else {
				cmd.Println(t.name)
			}
			for _, c := range t.columns {
				cmd.Printf("  %-12s %-10s%s\n", c.Name, c.Type, columnFlags(c))
			}
		}
	},
}

func columnFlags(c model.Column) string {
	switch {
	case c.PrimaryKey:
		return " primary key"
	case !c.Nullable:
		return " not null"
	default:
		return ""
	}
}
