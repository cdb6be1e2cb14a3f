package decode

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ValentinKolb/dSS/cmd/util"
	"github.com/ValentinKolb/dSS/wire"
	"github.com/ValentinKolb/dSS/wire/batch"
	"github.com/ValentinKolb/dSS/wire/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DecodeCmd reads a stream of frames and prints the decoded commands
var DecodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a frame dump into a readable command listing",
	Long: util.WrapString(
		"Reads a stream of wire frames from a file or stdin and prints one line per decoded command. " +
			"With --reassemble, append blocks are additionally fed through the block reassembler and the " +
			"completed events are listed."),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		util.InitConfig()
		if err := util.BindCommandFlags(cmd); err != nil {
			return err
		}
		common.InitLoggers(viper.GetString("log-level"))

		var in io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input: %v", err)
			}
			defer f.Close()
			in = f
		}

		if viper.GetBool("hex") {
			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read input: %v", err)
			}
			decoded, err := hex.DecodeString(strings.Join(strings.Fields(string(raw)), ""))
			if err != nil {
				return fmt.Errorf("invalid hex input: %v", err)
			}
			in = bytes.NewReader(decoded)
		}

		return run(in, os.Stdout)
	},
}

func init() {
	DecodeCmd.Flags().Bool("hex", false, util.WrapString("input is hex encoded (whitespace is ignored)"))
	DecodeCmd.Flags().Bool("reassemble", false, util.WrapString("feed append blocks through the reassembler and list completed events"))
	DecodeCmd.Flags().Bool("stats", false, util.WrapString("print per-command-type counts after the listing"))
}

// run decodes frames until the stream ends and writes the listing
func run(in io.Reader, out io.Writer) error {
	dec := batch.NewDecoder()
	counts := map[string]int{}

	for {
		c, err := wire.ReadCommand(in)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decode failed: %v", err)
		}

		counts[c.Type().Name]++
		fmt.Fprintf(out, "%-22s %s\n", c.Type().Name, describe(c))

		if viper.GetBool("reassemble") {
			appends, err := dec.OnCommand(c)
			if err != nil {
				return fmt.Errorf("reassembly failed: %v", err)
			}
			for _, a := range appends {
				fmt.Fprintf(out, "  event %d on %q: %d bytes\n", a.EventNumber, a.Segment, len(a.Data))
			}
		}
	}

	if viper.GetBool("stats") {
		var names []string
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(out)
		for _, name := range names {
			fmt.Fprintf(out, "%-22s %d\n", name, counts[name])
		}
	}
	return nil
}

// describe renders the fields that matter for reading a dump
func describe(c wire.WireCommand) string {
	switch c := c.(type) {
	case *wire.SetupAppend:
		return fmt.Sprintf("connection=%s segment=%q", c.ConnectionID, c.Segment)
	case *wire.AppendSetup:
		return fmt.Sprintf("segment=%q connection=%s lastEventNumber=%d", c.Segment, c.ConnectionID, c.LastEventNumber)
	case *wire.AppendBlock:
		return fmt.Sprintf("connection=%s %d bytes", c.ConnectionID, len(c.Data))
	case *wire.AppendBlockEnd:
		return fmt.Sprintf("connection=%s lastEventNumber=%d wholeEvents=%d trailing=%d bytes",
			c.ConnectionID, c.LastEventNumber, c.SizeOfWholeEvents, len(c.Data))
	case *wire.DataAppended:
		return fmt.Sprintf("connection=%s eventNumber=%d", c.ConnectionID, c.EventNumber)
	case *wire.SegmentRead:
		return fmt.Sprintf("segment=%q offset=%d atTail=%t endOfSegment=%t %d bytes",
			c.Segment, c.Offset, c.AtTail, c.EndOfSegment, len(c.Data))
	case *wire.Event:
		return fmt.Sprintf("%d bytes", len(c.Data))
	case *wire.PartialEvent:
		return fmt.Sprintf("%d bytes", len(c.Data))
	case *wire.Padding:
		return fmt.Sprintf("%d bytes", c.Length)
	case *wire.KeepAlive:
		return ""
	default:
		return fmt.Sprintf("%+v", c)
	}
}
