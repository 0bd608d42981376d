package main

import (
	"bytes"
	"encoding/csv"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

type datagram struct {
	src, dst int
	payload  string
}

// buildPCAP writes an Ethernet capture containing one UDP packet per
// datagram.
func buildPCAP(t *testing.T, datagrams []datagram) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, d := range datagrams {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
			DstMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 6},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IPv4(127, 0, 0, 1),
			DstIP:    net.IPv4(127, 0, 0, 1),
		}
		udp := &layers.UDP{SrcPort: layers.UDPPort(d.src), DstPort: layers.UDPPort(d.dst)}
		require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

		sb := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(sb, opts, eth, ip, udp, gopacket.Payload(d.payload)))

		data := sb.Bytes()
		ci := gopacket.CaptureInfo{
			Timestamp:     start.Add(time.Duration(i) * 20 * time.Millisecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return &buf
}

func TestDecode(t *testing.T) {
	capture := buildPCAP(t, []datagram{
		{40000, 3001, "SCR-3001(init -90 0 90)"},
		{3001, 40000, "***identified***"},
		{3001, 40000, "(curLapTime 0.5)(distRaced 12.5)(speedX 36)(trackPos 0.95)"},
		{40000, 3001, "(accel 1)(brake 0)(gear 1)(steer 0)"},
		{3001, 40000, "(curLapTime 0.52)(distRaced 12.7)(speedX 72)(trackPos -0.1)"},
		{5353, 5353, "unrelated"},
		{3001, 40000, "***shutdown***"},
	})

	var out bytes.Buffer
	sum, err := decode(capture, 3001, &out)
	require.NoError(t, err)

	assert.Equal(t, Summary{Packets: 6, Ticks: 2, Markers: 2, Commands: 2}, sum)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, header, rows[0])

	assert.Equal(t, "2024-05-01T12:00:00.020000Z", rows[1][0])
	assert.Equal(t, "identified", rows[1][1])

	assert.Equal(t, []string{"data", "0.5", "12.5", "10", "0.95", "true"}, rows[2][1:])
	assert.Equal(t, []string{"data", "0.52", "12.7", "20", "-0.1", "false"}, rows[3][1:])
	assert.Equal(t, "shutdown", rows[4][1])
}

func TestDecode_NotPCAP(t *testing.T) {
	_, err := decode(bytes.NewBufferString("definitely not a capture"), 3001, &bytes.Buffer{})
	assert.Error(t, err)
}
