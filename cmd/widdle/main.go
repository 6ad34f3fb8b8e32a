package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/widdle/reader"
	"github.com/widdle/reader/bridge"
	"github.com/widdle/reader/channel"
)

// discoverBridge browses mDNS for a running bridge daemon and returns
// its address.
func discoverBridge() (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", err
	}

	ctx, stopDiscovery := context.WithTimeout(context.Background(), time.Duration(10)*time.Second)
	defer stopDiscovery()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, bridge.ZeroconfService, "local.", entries); err != nil {
		return "", err
	}

	for entry := range entries {
		if len(entry.AddrIPv4) == 0 {
			continue
		}

		log.Printf("Found bridge: %s (%s:%d)\n", entry.Instance, entry.AddrIPv4[0], entry.Port)
		return entry.AddrIPv4[0].String() + ":" + strconv.Itoa(entry.Port), nil
	}

	return "", errors.New("no bridge daemon found")
}

func command(args []string) (reader.PlaybackCommand, error) {
	var zero reader.PlaybackCommand

	switch args[0] {
	case "play":
		return reader.NewCommand(reader.ActionPlay), nil
	case "pause":
		return reader.NewCommand(reader.ActionPause), nil
	case "next":
		return reader.NewCommand(reader.ActionSkipToNext), nil
	case "prev":
		return reader.NewCommand(reader.ActionSkipToPrevious), nil
	case "seek":
		if len(args) < 2 {
			return zero, errors.New("seek requires a position in milliseconds")
		}
		pos, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return zero, err
		}
		return reader.SeekTo(pos), nil
	case "speed":
		if len(args) < 2 {
			return zero, errors.New("speed requires a playback rate")
		}
		speed, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return zero, err
		}
		return reader.SetSpeed(speed), nil
	case "open":
		if len(args) < 2 {
			return zero, errors.New("open requires a media id")
		}
		return reader.PlayFromMediaID(args[1]), nil
	case "search":
		if len(args) < 2 {
			return zero, errors.New("search requires a query")
		}
		return reader.PlayFromSearch(args[1]), nil
	default:
		return zero, errors.New("unsupported command: " + args[0])
	}
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalln("usage: widdle <play|pause|next|prev|seek|speed|open|search|status> [args]")
	}

	addr, err := discoverBridge()
	if err != nil {
		log.Fatalln(err)
	}

	conn, err := channel.Dial(addr, nil)
	if err != nil {
		log.Fatalln(err)
	}
	defer conn.Close()

	if os.Args[1] == "status" {
		result, err := conn.Call(channel.MethodRefreshPlaybackState, nil)
		if err != nil {
			log.Fatalln(err)
		}
		if len(result) == 0 {
			log.Println("No playback state")
			return
		}

		st := channel.ParseStateArgs(result)
		status := "paused"
		if st.IsPlaying {
			status = "playing"
		}
		log.Printf("%s at %s (%.2fx)\n", status, st.Position(), st.Speed)
		return
	}

	cmd, err := command(os.Args[1:])
	if err != nil {
		log.Fatalln(err)
	}

	if _, err := conn.Call(channel.MethodMediaSessionCommand, channel.CommandArgs(cmd)); err != nil {
		log.Fatalln(err)
	}
}
