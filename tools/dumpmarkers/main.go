// Command dumpmarkers prints the header structure of JPEG files.
//
// Usage:
//
//	dumpmarkers [-chunk n] [-v 1] file.jpg [file.jpg.zst ...]
//
// With -chunk the file is fed to the marker reader n bytes at a time, so the
// reader suspends and resumes at every chunk boundary. -v 1 and above trace
// every marker through glog.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cocosip/go-jpeg-markers/dicom"
	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/cocosip/go-jpeg-markers/jpeg/marker"
	"github.com/cocosip/go-jpeg-markers/jpeg/source"
	"github.com/golang/glog"
)

func main() {
	chunk := flag.Int("chunk", 0, "feed the reader this many bytes at a time (0 reads directly)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dumpmarkers [flags] <file.jpg> ...")
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	reg := source.NewRegistry()
	defer reg.CloseAll()

	failed := false
	for i, name := range flag.Args() {
		unit := i + 1
		if _, err := reg.Open(unit, name); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			failed = true
			continue
		}
		if err := dump(reg, unit, *chunk); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			failed = true
		}
		if err := reg.Close(unit); err != nil {
			glog.Warningf("close %s: %v", name, err)
		}
	}
	if failed {
		glog.Flush()
		os.Exit(1)
	}
}

func dump(reg *source.Registry, unit, chunk int) error {
	f, err := reg.Get(unit)
	if err != nil {
		return err
	}
	fmt.Printf("=== %s", f.Name())
	if f.Compressed() {
		fmt.Print(" (zstd)")
	}
	fmt.Println()

	var comments []string
	warnings := 0
	opts := marker.DefaultOptions()
	opts.COM = marker.CustomHandler(80, func(r *marker.Reader, seg *marker.Segment) error {
		comments = append(comments, string(seg.Data))
		return nil
	})
	opts.Warn = func(w marker.Warning) {
		warnings++
		fmt.Printf("  warning: %v\n", w)
	}

	var src marker.Source = f
	var feed func() error
	if chunk > 0 {
		buf := source.NewBuffer()
		src = buf
		feed = func() error { return feedChunk(buf, f, chunk) }
	}

	r := marker.NewReader(src, nil, &opts)
	scans, suspensions := 0, 0
	for done := false; !done; {
		status, err := r.ReadMarkers()
		switch status {
		case marker.FatalError:
			return err
		case marker.Suspended:
			suspensions++
			if feed == nil {
				return errors.New("direct source suspended")
			}
			if err := feed(); err != nil {
				return err
			}
		case marker.ReachedScanStart:
			scans++
			printScan(r.State(), src.Position())
			for {
				ok, err := r.SkipScanData()
				if err != nil {
					return err
				}
				if ok {
					break
				}
				suspensions++
				if feed == nil {
					return errors.New("direct source suspended")
				}
				if err := feed(); err != nil {
					return err
				}
			}
		case marker.ReachedEndOfStream:
			done = true
		}
	}

	printState(r.State())
	for _, c := range comments {
		fmt.Printf("  comment: %q\n", c)
	}
	fmt.Printf("  scans: %d, warnings: %d", scans, warnings)
	if chunk > 0 {
		fmt.Printf(", suspensions: %d", suspensions)
	}
	fmt.Printf(", end at offset %d\n", src.Position())
	return nil
}

// feedChunk moves up to n bytes from f into buf, closing buf at the end of f.
func feedChunk(buf *source.Buffer, f *source.File, n int) error {
	if len(f.Window()) == 0 {
		if _, err := f.Fill(); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return buf.Close()
			}
			return err
		}
	}
	w := f.Window()
	n = min(n, len(w))
	if _, err := buf.Write(w[:n]); err != nil {
		return err
	}
	f.Advance(n)
	return nil
}

func printScan(st *marker.State, offset int64) {
	ids := make([]int, len(st.ScanComponents))
	for i, ci := range st.ScanComponents {
		ids[i] = st.Components[ci].ID
	}
	fmt.Printf("  scan %d at offset %d: components %v Ss=%d Se=%d Ah=%d Al=%d\n",
		st.ScanCount, offset, ids, st.Ss, st.Se, st.Ah, st.Al)
}

func printState(st *marker.State) {
	mode := "sequential"
	if st.Progressive {
		mode = "progressive"
	}
	coding := "Huffman"
	if st.Arithmetic {
		coding = "arithmetic"
	}
	fmt.Printf("  frame: %v %s %s, %dx%d, %d-bit, %v\n",
		st.FrameMarker, mode, coding, st.Width, st.Height, st.Precision, st.InferColorSpace())
	for _, c := range st.Components {
		fmt.Printf("    component %d: %dx%d sampling, quant table %d, dc %d ac %d\n",
			c.ID, c.H, c.V, c.QuantTable, c.DCTable, c.ACTable)
	}

	for i := 0; i < marker.NumTables; i++ {
		if q := st.Quant[i]; q != nil {
			fmt.Printf("  quant table %d: %d-bit, DC %d", i, 8*(q.Precision+1), q.Values[0])
			base := common.DefaultChrominanceQuantTable
			if i == 0 {
				base = common.DefaultLuminanceQuantTable
			}
			if quality := common.EstimateQuality(q.Values, base); quality > 0 {
				fmt.Printf(", quality %d", quality)
			}
			fmt.Println()
		}
		for _, h := range []struct {
			class string
			table *common.HuffmanTable
		}{{"DC", st.DCHuffman[i]}, {"AC", st.ACHuffman[i]}} {
			if h.table != nil {
				fmt.Printf("  %s huffman table %d: %d symbols", h.class, i, h.table.Symbols())
				if common.IsStandardHuffmanTable(h.table) {
					fmt.Print(" (standard)")
				}
				fmt.Println()
			}
		}
	}
	if st.RestartInterval > 0 {
		fmt.Printf("  restart interval: %d MCUs\n", st.RestartInterval)
	}
	if st.SawJFIF {
		fmt.Printf("  JFIF %d.%02d, density %dx%d unit %d\n",
			st.JFIFMajor, st.JFIFMinor, st.XDensity, st.YDensity, st.DensityUnit)
	}
	if st.SawAdobe {
		fmt.Printf("  Adobe transform %d\n", st.AdobeTransform)
	}

	if ts, err := dicom.TransferSyntax(st); err == nil {
		fmt.Printf("  DICOM transfer syntax: %s\n", ts.UID().UID())
	} else {
		fmt.Printf("  DICOM transfer syntax: none (%v)\n", err)
	}
}
