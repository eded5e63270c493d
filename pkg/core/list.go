package core

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"qstore/pkg/archive"
)

// List prints the entries of a tree container as a table.
func List(containerPath string, w io.Writer) error {
	rc, err := archive.OpenFile(containerPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", containerPath, err)
	}
	defer rc.Close()

	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"Path", "Size", "Stored"})
	out.SetAutoWrapText(false)
	out.SetAlignment(tablewriter.ALIGN_LEFT)

	var size, stored uint64
	for _, e := range rc.Entries() {
		out.Append([]string{
			e.Path,
			strconv.FormatUint(e.Size, 10),
			strconv.FormatUint(e.StoredSize, 10),
		})
		size += e.Size
		stored += e.StoredSize
	}
	out.SetFooter([]string{
		fmt.Sprintf("%d files", len(rc.List())),
		strconv.FormatUint(size, 10),
		strconv.FormatUint(stored, 10),
	})

	out.Render()
	return nil
}
