package version

import (
	"fmt"
	"io"
	"runtime"
)

var (
	Version string = "dev"
)

func Fprint(w io.Writer) {
	fmt.Fprintf(w, "hlbundle version %s\n", Version)
	fmt.Fprintf(w, "%s/%s\n", runtime.GOOS, runtime.GOARCH)
}
