package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpn777/shmio"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Print a segment's header fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	seg, err := shmio.Open(shmio.OpenOptions{Path: args[0]})
	if err != nil {
		return fmt.Errorf("open segment: %w", err)
	}
	defer seg.Close()

	it, err := seg.CreateIterator()
	if err != nil {
		return fmt.Errorf("create iterator: %w", err)
	}
	defer it.Close()

	committed, err := it.CommittedSize()
	if err != nil {
		return fmt.Errorf("read committed size: %w", err)
	}

	fmt.Printf("header_size=%d data_offset=%d committed_size=%d\n", seg.HeaderSizeField(), seg.DataOffsetField(), committed)
	return nil
}
