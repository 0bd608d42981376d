// Package main decodes recorded SCR race traffic from a PCAP file into one CSV
// row per server message.
//
// Usage:
//
//	pcap-decode -pcap race.pcap -port 3001 > ticks.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/sirupsen/logrus"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/car"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/evaluation"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

var header = []string{"time", "kind", "lap_time", "dist_raced", "speed_x_mps", "track_pos", "crashed"}

// Summary counts what a decode pass saw.
type Summary struct {
	Packets  int
	Ticks    int
	Markers  int
	Commands int
}

func main() {
	pcapFile := flag.String("pcap", "", "Path to PCAP file (required)")
	port := flag.Int("port", 3001, "UDP port of the race server")
	verbose := flag.Bool("verbose", false, "Log undecodable messages")
	flag.Parse()

	if *pcapFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -pcap flag is required")
		flag.Usage()
		os.Exit(1)
	}
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	f, err := os.Open(*pcapFile)
	if err != nil {
		logrus.Fatalf("Failed to open PCAP file: %v", err)
	}
	defer f.Close()

	sum, err := decode(f, *port, os.Stdout)
	if err != nil {
		logrus.Fatalf("Decode failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"packets":  sum.Packets,
		"ticks":    sum.Ticks,
		"markers":  sum.Markers,
		"commands": sum.Commands,
	}).Info("Decode complete.")
}

// decode reads a PCAP stream and writes a CSV row for every datagram the
// server on port sent. Datagrams towards the server are only counted.
func decode(r io.Reader, port int, w io.Writer) (Summary, error) {
	var sum Summary

	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return sum, fmt.Errorf("failed to read PCAP header: %w", err)
	}

	out := csv.NewWriter(w)
	if err := out.Write(header); err != nil {
		return sum, err
	}

	source := gopacket.NewPacketSource(reader, reader.LinkType())
	for packet := range source.Packets() {
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp := udpLayer.(*layers.UDP)
		if len(udp.Payload) == 0 {
			continue
		}

		switch {
		case int(udp.DstPort) == port:
			sum.Packets++
			sum.Commands++
			continue
		case int(udp.SrcPort) != port:
			continue
		}
		sum.Packets++

		ts := packet.Metadata().Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
		row, isTick := decodeServerMessage(udp.Payload)
		if isTick {
			sum.Ticks++
		} else {
			sum.Markers++
		}
		if err := out.Write(append([]string{ts}, row...)); err != nil {
			return sum, err
		}
	}

	out.Flush()
	return sum, out.Error()
}

// decodeServerMessage renders a server datagram as CSV fields after the
// timestamp. The second result is false for control markers.
func decodeServerMessage(payload []byte) ([]string, bool) {
	kind := wire.Classify(payload)
	if kind != wire.KindData {
		return []string{kind.String(), "", "", "", "", ""}, false
	}

	frame, err := wire.Decode(payload)
	if err != nil {
		monitoring.Logger.WithError(err).Debug("Sensor message decoded partially.")
	}
	s, err := car.NewState(frame)
	if err != nil {
		monitoring.Logger.WithError(err).Debug("Incomplete car state.")
	}

	crashed := math.Abs(s.DistanceFromCenter) > evaluation.CrashThreshold
	return []string{
		kind.String(),
		wire.FormatNumber(s.CurrentLapTime),
		wire.FormatNumber(s.DistanceRaced),
		wire.FormatNumber(s.SpeedX),
		wire.FormatNumber(s.DistanceFromCenter),
		strconv.FormatBool(crashed),
	}, true
}
