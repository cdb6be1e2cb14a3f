package gen

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ValentinKolb/dSS/cmd/util"
	"github.com/ValentinKolb/dSS/wire"
	"github.com/ValentinKolb/dSS/wire/batch"
	"github.com/ValentinKolb/dSS/wire/common"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logger.GetLogger("cmd")

// GenCmd writes a sample frame sequence for a full setup-and-append
// exchange, usable as test input for clients, servers and `dss decode`.
var GenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a sample setup-and-append frame sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		util.InitConfig()
		if err := util.BindCommandFlags(cmd); err != nil {
			return err
		}
		common.InitLoggers(viper.GetString("log-level"))

		// logging only makes sense when the frames don't share stdout
		toFile := viper.GetString("out") != ""

		var out io.Writer = os.Stdout
		if toFile {
			f, err := os.Create(viper.GetString("out"))
			if err != nil {
				return fmt.Errorf("failed to create output: %v", err)
			}
			defer f.Close()
			out = f
		}
		if viper.GetBool("hex") {
			enc := hex.NewEncoder(out)
			defer fmt.Fprintln(out)
			out = enc
		}

		return run(out, toFile)
	},
}

func init() {
	GenCmd.Flags().String("segment", "example", util.WrapString("segment name for the generated exchange"))
	GenCmd.Flags().Int("events", 3, util.WrapString("number of events to append"))
	GenCmd.Flags().Int("event-size", 64, util.WrapString("payload size per event in bytes"))
	GenCmd.Flags().String("out", "", util.WrapString("write frames to this file instead of stdout"))
	GenCmd.Flags().Bool("hex", false, util.WrapString("hex encode the output"))
}

// run emits one complete exchange: setup, the block run, and the acks
func run(out io.Writer, logStats bool) error {
	segment := viper.GetString("segment")
	events := viper.GetInt("events")
	eventSize := viper.GetInt("event-size")
	connectionID := uuid.New()

	writer := batch.NewBlockWriter(connectionID)
	for i := 0; i < events; i++ {
		payload := make([]byte, eventSize)
		for j := range payload {
			payload[j] = byte(i)
		}
		if err := writer.Append(payload); err != nil {
			return err
		}
	}
	blocks, end, err := writer.Close(int64(events))
	if err != nil {
		return err
	}

	sequence := []wire.WireCommand{
		&wire.SetupAppend{ConnectionID: connectionID, Segment: segment},
		&wire.AppendSetup{Segment: segment, ConnectionID: connectionID, LastEventNumber: 0},
	}
	for _, block := range blocks {
		sequence = append(sequence, block)
	}
	sequence = append(sequence,
		end,
		&wire.DataAppended{ConnectionID: connectionID, EventNumber: int64(events)},
	)

	written := 0
	for _, c := range sequence {
		frame, err := wire.EncodeCommand(c)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %v", c.Type().Name, err)
		}
		if _, err := out.Write(frame); err != nil {
			return fmt.Errorf("failed to write frame: %v", err)
		}
		written += len(frame)
	}
	if logStats {
		log.Infof("generated %d frames (%d bytes) for connection %s", len(sequence), written, connectionID)
	}
	return nil
}
