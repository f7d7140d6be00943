// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package library lays out a title on the locally synced library folder and
// enumerates the artifacts that must be published.
package library

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSources is returned when the source directory holds no .mkv files.
	ErrNoSources = errors.New("no source media found")
	// ErrTitleExists is returned when a new title would overwrite an existing folder.
	ErrTitleExists = errors.New("title already exists in library")
	// ErrInvalidTitle is returned for titles that cannot be used as a folder name.
	ErrInvalidTitle = errors.New("invalid title")
)

// MainItem is the name of the primary content item.
const MainItem = "main"

// ItemName returns "main" for index 0 and "bonusN" otherwise.
func ItemName(index int) string {
	if index == 0 {
		return MainItem
	}
	return fmt.Sprintf("bonus%d", index)
}

// Source is one discovered input file.
type Source struct {
	Path         string
	SubtitlePath string // empty when no sibling .srt exists
	Size         int64
}

// ContentItem is the main feature or a bonus item of a title.
type ContentItem struct {
	Index        int
	Name         string
	SourcePath   string
	SubtitlePath string
	Dir          string // local item directory
	RemoteDir    string // store path of the item directory
}

// Artifact is a file to publish. Key is the ordering key parsed from the
// file name at enumeration time and is carried unchanged downstream.
type Artifact struct {
	Name       string
	LocalPath  string
	RemotePath string
	Key        int
	Size       int64
}
