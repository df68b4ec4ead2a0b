package main

import (
	"github.com/bwesterb/go-huffblock"

	"rsc.io/getopt"

	"golang.org/x/term"

	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// Flags

	decompress = flag.Bool("decompress", false, "specify to decompress")
	info       = flag.Bool("info", false, "specify to check a compressed file by decoding it; writes no output and reports only errors")
	keep       = flag.Bool("keep", false, "keep (don't delete) input file")
	toStdout   = flag.Bool("stdout", false, "write to stdout; implies -k")
	force      = flag.Bool("force", false, "overwrite output")

	// State
	inPath  string
	inFile  *os.File
	outPath string
	outFile *os.File
)

const extension = ".hbk"

// magic identifies a huffblock container: blocks of MaxBlockSize bytes,
// each framed separately and compressed via huffblock.CompressBlock; a
// block may reuse the code table of an earlier block.
var magic = [4]byte{'H', 'U', 'F', 'B'}

const (
	tagStored = iota
	tagRLE
	tagCompressed
)

// chooseSingleStream picks the stream layout the way the package itself
// would if it had an opinion: four streams pay a fixed 6-byte jump-table
// tax that small blocks can't amortize.
func chooseSingleStream(n int) bool {
	return n < 4096
}

func writeBlockHeader(w io.Writer, tag byte, origLen int) error {
	if _, err := w.Write([]byte{tag}); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(origLen))
	_, err := w.Write(lenBuf[:])
	return err
}

func doCompress() int {
	r := bufio.NewReader(inFile)
	w := bufio.NewWriter(outFile)

	if _, err := w.Write(magic[:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
		return 10
	}

	ws := huffblock.NewWorkspace()
	persisted := &huffblock.PersistedTable{}

	var l io.Writer
	if *info {
		l = os.Stderr
	}

	buf := make([]byte, huffblock.MaxBlockSize)
	blockNo := 0

	for {
		n, err := io.ReadFull(r, buf)
		if n == 0 {
			if err != nil && err != io.EOF {
				fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
				return 5
			}
			break
		}

		chunk := buf[:n]
		single := chooseSingleStream(n)

		out, headerPresent, cerr := huffblock.CompressBlock(
			ws, chunk, persisted, true, 0, 0, single, l,
		)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "%s: block %d: %v\n", inPath, blockNo, cerr)
			return 6
		}

		switch {
		case len(out) == 0:
			if werr := writeBlockHeader(w, tagStored, n); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
			if _, werr := w.Write(chunk); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
		case len(out) == 1:
			if werr := writeBlockHeader(w, tagRLE, n); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
			if _, werr := w.Write(out); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
		default:
			if werr := writeBlockHeader(w, tagCompressed, n); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
			flags := byte(0)
			if headerPresent {
				flags |= 1
			}
			if single {
				flags |= 2
			}
			var lenBuf [4]byte
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(out)))
			if _, werr := w.Write([]byte{flags}); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
			if _, werr := w.Write(lenBuf[:]); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
			if _, werr := w.Write(out); werr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, werr)
				return 7
			}
		}

		if l != nil {
			fmt.Fprintf(l, "block %d: %d -> %d bytes (repeat=%s)\n",
				blockNo, n, len(out), persisted.State)
		}

		blockNo++
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
		return 7
	}
	return 0
}

func doDecompress() int {
	r := bufio.NewReader(inFile)

	var w *bufio.Writer
	if outFile == nil {
		w = bufio.NewWriter(io.Discard)
	} else {
		w = bufio.NewWriter(outFile)
	}

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 8
	}
	if gotMagic != magic {
		fmt.Fprintf(os.Stderr, "%s: not a huffblock file\n", inPath)
		return 8
	}

	var lastTable huffblock.CTable
	var lastMaxBits int
	haveTable := false
	blockNo := 0

	for {
		var tag [1]byte
		_, err := io.ReadFull(r, tag[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 9
		}

		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 9
		}
		origLen := int(binary.LittleEndian.Uint32(lenBuf[:]))

		switch tag[0] {
		case tagStored:
			chunk := make([]byte, origLen)
			if _, err := io.ReadFull(r, chunk); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
				return 9
			}
			if _, err := w.Write(chunk); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
				return 10
			}
		case tagRLE:
			var b [1]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
				return 9
			}
			chunk := make([]byte, origLen)
			for i := range chunk {
				chunk[i] = b[0]
			}
			if _, err := w.Write(chunk); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
				return 10
			}
		case tagCompressed:
			var flagsAndLen [5]byte
			if _, err := io.ReadFull(r, flagsAndLen[:]); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
				return 9
			}
			flags := flagsAndLen[0]
			headerPresent := flags&1 != 0
			single := flags&2 != 0
			payloadLen := int(binary.LittleEndian.Uint32(flagsAndLen[1:]))

			payload := make([]byte, payloadLen)
			if _, err := io.ReadFull(r, payload); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
				return 9
			}

			var tbl *huffblock.CTable
			if !headerPresent {
				if !haveTable {
					fmt.Fprintf(os.Stderr, "%s: block %d: no prior table to reuse\n", inPath, blockNo)
					return 9
				}
				tbl = &lastTable
			}

			chunk, usedTable, usedMaxBits, derr := huffblock.DecompressBlock(
				payload, origLen, 0, single, headerPresent, tbl, lastMaxBits,
			)
			if derr != nil {
				fmt.Fprintf(os.Stderr, "%s: block %d: %v\n", inPath, blockNo, derr)
				return 9
			}
			lastTable = usedTable
			lastMaxBits = usedMaxBits
			haveTable = true

			if _, err := w.Write(chunk); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
				return 10
			}
		default:
			fmt.Fprintf(os.Stderr, "%s: block %d: unknown tag %d\n", inPath, blockNo, tag[0])
			return 9
		}

		blockNo++
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
		return 10
	}
	return 0
}

func do() int {
	var (
		err  error
		code int
	)

	if len(flag.Args()) > 1 {
		fmt.Fprintf(os.Stderr, "too many arguments\n")
		return 2
	}

	if len(flag.Args()) == 0 {
		inPath = "-"
	} else {
		inPath = flag.Args()[0]
	}

	closeInput := false
	closeOutput := false

	defer func() {
		if closeInput {
			inFile.Close()
		}

		if closeOutput {
			outFile.Close()

			if code != 0 {
				os.Remove(outPath)
			}
		}
	}()

	if inPath == "-" {
		inFile = os.Stdin
		closeInput = false
	} else {
		if _, err := os.Stat(inPath); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 1
		}

		inFile, err = os.Open(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 3
		}
		closeInput = true
	}

	if inPath == "-" {
		outPath = "-"
	} else {
		if *toStdout {
			outPath = "-"
		} else if *decompress {
			if strings.HasSuffix(inPath, extension) {
				outPath = inPath[:len(inPath)-len(extension)]
			} else {
				outPath = inPath + ".out"
				fmt.Fprintf(
					os.Stderr,
					"%s: Unknown extension, writing to %s\n",
					inPath,
					outPath,
				)
			}
		} else if !*info {
			outPath = inPath + extension
		}
	}

	if *info && !*decompress {
		outFile = nil
	} else if outPath == "-" {
		outFile = os.Stdout

		if term.IsTerminal(int(os.Stdout.Fd())) && !*decompress && !*info {
			fmt.Fprintf(os.Stderr, "huffblock: I'm not writing compressed data to stdout\n")
			return 13
		}
	} else if !*info {
		if _, err := os.Stat(outPath); !*force && err == nil {
			fmt.Fprintf(os.Stderr, "%s: already exists\n", outPath)
			return 11
		}

		outFile, err = os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: create: %v\n", outPath, err)
			return 4
		}

		closeOutput = true
	}

	if *decompress || *info {
		code = doDecompress()
	} else {
		code = doCompress()
	}

	if closeInput {
		closeInput = false
		inFile.Close()

		if !*keep && !*toStdout && code == 0 && !*info {
			err = os.Remove(inPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: unlink: %v\n", inPath, err)
				return 2
			}
		}
	}

	return code
}

func main() {
	getopt.Alias("d", "decompress")
	getopt.Alias("k", "keep")
	getopt.Alias("c", "stdout")
	getopt.Alias("f", "force")
	getopt.Alias("i", "info")

	// Work around https://github.com/rsc/getopt/issues/3
	err := getopt.CommandLine.Parse(os.Args[1:])
	if err != nil {
		os.Exit(12)
	}

	ret := do()
	os.Exit(ret)
}
