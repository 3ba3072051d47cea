// Package compress wraps the payload codecs a solution store can use.
package compress

import (
	"fmt"
	"sort"
	"strings"
)

// Codec compresses and restores stored solution payloads.
//
// Implementations are stateless values and safe for concurrent use.
// Returned slices are newly allocated and owned by the caller.
type Codec interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

const (
	None = "none"
	S2   = "s2"
	Zstd = "zstd"
	LZ4  = "lz4"
)

var builtinCodecs = map[string]Codec{
	None: NewNoOpCompressor(),
	S2:   NewS2Compressor(),
	Zstd: NewZstdCompressor(),
	LZ4:  NewLZ4Compressor(),
}

// Parse returns the codec registered under name. An empty name selects None.
func Parse(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = None
	}
	codec, ok := builtinCodecs[key]
	if !ok {
		return nil, fmt.Errorf("unsupported compression: %s (want one of %s)", name, strings.Join(Names(), "|"))
	}
	return codec, nil
}

// Names lists the built-in codec names in lexical order.
func Names() []string {
	names := make([]string, 0, len(builtinCodecs))
	for name := range builtinCodecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
