// Command plnode is an example wiring of a ControlledNode/ManagingNode
// façade to the reference Linux HAL (pkg/hal/rawsock) and the reference
// file-backed persistence hook (pkg/persist). It exists to exercise the
// engine end to end on real hardware, the way the teacher's cmd/canopen
// wires a CANopen Node to a SocketCAN bus; it carries no protocol logic
// of its own.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/hal/rawsock"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/node"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/od"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/persist"
	"github.com/fabiomolinar/powerlink-rs-sub001/pkg/scheduler"
)

const defaultInterface = "eth0"

func main() {
	logrus.SetLevel(logrus.InfoLevel)

	iface := flag.String("i", defaultInterface, "network interface, e.g. eth0")
	role := flag.String("role", "cn", "node role: cn or mn")
	nodeId := flag.Int("n", 1, "this node's POWERLINK node id")
	mnNodeId := flag.Int("mn", int(pl.NodeIdDefaultMn), "MN node id (CN role only)")
	odPath := flag.String("od", "", "INI object dictionary file path (required)")
	dataPath := flag.String("data", "", "persisted OD data file path (empty disables persistence)")
	cycleUs := flag.Uint64("cycle", 1000, "isochronous cycle time in microseconds (MN role only)")
	isoNodes := flag.String("cn-ids", "", "comma-separated CN node ids the MN schedules isochronously (MN role only)")
	flag.Parse()

	if *odPath == "" {
		fmt.Fprintln(os.Stderr, "plnode: -od is required")
		os.Exit(1)
	}

	var hook od.PersistenceHook
	if *dataPath != "" {
		hook = persist.NewFileHook(*dataPath)
	}

	dict, err := od.ParseINI(*odPath, hook)
	if err != nil {
		logrus.WithError(err).Fatal("failed to parse object dictionary")
	}
	if err := dict.Init(); err != nil {
		logrus.WithError(err).Fatal("failed to initialize object dictionary")
	}

	hal, err := rawsock.NewHal(*iface, pl.NodeId(*nodeId), nil)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open network interface")
	}
	defer hal.Close()

	switch strings.ToLower(*role) {
	case "cn":
		runControlledNode(hal, dict, pl.NodeId(*nodeId), pl.NodeId(*mnNodeId))
	case "mn":
		isoList := parseIsoNodes(*isoNodes)
		runManagingNode(hal, dict, pl.NodeId(*nodeId), isoList, *cycleUs)
	default:
		fmt.Fprintf(os.Stderr, "plnode: unknown role %q, expected cn or mn\n", *role)
		os.Exit(1)
	}
}

func parseIsoNodes(csv string) []scheduler.IsoNode {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	nodes := make([]scheduler.IsoNode, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			logrus.WithField("value", p).Fatal("invalid -cn-ids entry")
		}
		nodes = append(nodes, scheduler.IsoNode{NodeId: pl.NodeId(id), Active: true, PResTimeoutUs: 500})
	}
	return nodes
}

// resolvePeerMac is a stand-in for whatever address resolution a real
// deployment would use (ARP, a static table, a commissioning tool writing
// 0x1F84-0x1F87); here it derives a locally-administered MAC from the
// POWERLINK node id, so the example runs without external configuration.
func resolvePeerMac(id pl.NodeId) pl.MacAddress {
	return pl.MacAddress{0x02, 0x00, 0x00, 0x00, 0x00, byte(id)}
}

func runControlledNode(hal *rawsock.Hal, dict *od.ObjectDictionary, selfId, mnId pl.NodeId) {
	cn := node.NewControlledNode(selfId, hal.LocalMacAddress(), resolvePeerMac(mnId), dict, nil, nil)
	runLoop(hal, func(buf []byte, now uint64) node.NodeAction { return cn.ProcessRawFrame(buf, now) }, cn.Tick, cn.NextActionTime)
}

func runManagingNode(hal *rawsock.Hal, dict *od.ObjectDictionary, selfId pl.NodeId, isoList []scheduler.IsoNode, cycleUs uint64) {
	mn := node.NewManagingNode(selfId, hal.LocalMacAddress(), dict, isoList, cycleUs, nil, nil)
	for _, iso := range isoList {
		mn.SetPeerMac(iso.NodeId, resolvePeerMac(iso.NodeId))
	}
	runLoop(hal, func(buf []byte, now uint64) node.NodeAction { return mn.ProcessRawFrame(buf, now) }, mn.Tick, mn.NextActionTime)
}

// runLoop is the host poll loop spec.md §5 leaves unspecified: read a
// frame (non-blocking, bounded by the HAL's receive timeout), feed it to
// the façade, tick once per pass, and perform whatever NodeAction comes
// back. Every call is synchronous and single-threaded, matching §5's
// cooperative-scheduling contract — no goroutine here ever touches the
// façade concurrently with another.
func runLoop(hal *rawsock.Hal, processRawFrame func([]byte, uint64) node.NodeAction, tick func(uint64) node.NodeAction, nextActionTime func() (uint64, bool)) {
	buf := make([]byte, rawsock.MaxFrameSize)
	start := time.Now()
	now := func() uint64 { return uint64(time.Since(start).Microseconds()) }

	for {
		n, err := hal.Receive(buf)
		if err != nil {
			logrus.WithError(err).Error("receive failed")
			continue
		}
		if n > 0 {
			performAction(hal, processRawFrame(buf[:n], now()))
		}

		performAction(hal, tick(now()))

		// NextActionTime tells the host when the façade next needs a Tick
		// of its own accord (e.g. the MN's cycle trigger); sleeping until
		// then avoids a busy-spin between frames when nothing else is due.
		if deadline, ok := nextActionTime(); ok {
			if remaining := int64(deadline) - int64(now()); remaining > 0 {
				time.Sleep(time.Duration(remaining) * time.Microsecond)
			}
		}
	}
}

func performAction(hal *rawsock.Hal, action node.NodeAction) {
	switch action.Kind {
	case node.ActionSendFrame:
		if err := hal.Send(action.Bytes); err != nil {
			logrus.WithError(err).Error("send failed")
		}
	case node.ActionSendUdp:
		logrus.Debug("ignoring ActionSendUdp: UDP transport is out of scope for this reference HAL")
	}
}
