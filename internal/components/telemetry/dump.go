package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// DumpResponses writes every exchange made by client to its own file in dir,
// formatted with FormatResponse. The directory is emptied first. Files are
// named by request number, so a failing page can be found by order.
func DumpResponses(client *resty.Client, dir string, tel API) error {
	err := os.RemoveAll(dir)
	if err != nil {
		return err
	}
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(&counter, 1)
		path := filepath.Join(dir, fmt.Sprintf("%04d.txt", n))
		err := os.WriteFile(path, []byte(FormatResponse(res)), 0o600)
		if err != nil {
			tel.ReportWarning("resty.dump", path, err)
		}
		return nil
	})
	return nil
}
