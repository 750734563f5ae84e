package cmd

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/compose"
	"github.com/offspot/runtime-config/internal/logging"
)

// RunContainers validates and installs a docker-compose payload.
func RunContainers(args []string) int {
	fs := flag.NewFlagSet("containers", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	dest := fs.String("dest", brand.Path(brand.ComposePath), "Where to write the compose document")
	checkImages := fs.Bool("check-images", false, "Also verify that every image exists on its registry")
	fs.Parse(args)
	setDebug(*debug)

	log := logging.WithComponent("containers")
	if fs.NArg() != 1 {
		log.Error("exactly one source argument required, - for stdin")
		return ExitInvalid
	}
	return applyContainers(log, fs.Arg(0), *dest, *checkImages)
}

func applyContainers(log *logging.Logger, src, dest string, checkImages bool) int {
	log.Info("writing compose document", "source", src, "dest", dest)

	var payload []byte
	var err error
	if src == "-" {
		payload, err = io.ReadAll(os.Stdin)
	} else {
		payload, err = os.ReadFile(src)
	}
	if err != nil {
		return failError(log, "reading compose payload", "source", src, "error", err)
	}

	return writeContainers(log, payload, dest, checkImages)
}

// applyContainersPayload installs a compose payload at the default
// destination, skipping the registry checks: the appliance may well be
// offline at boot.
func applyContainersPayload(log *logging.Logger, payload []byte) int {
	return writeContainers(log, payload, brand.Path(brand.ComposePath), false)
}

func writeContainers(log *logging.Logger, payload []byte, dest string, checkImages bool) int {
	doc, err := compose.Parse(payload)
	if err != nil {
		log.Error("invalid compose payload", "error", err)
		return ExitInvalid
	}
	if check := compose.Validate(doc); !check.OK() {
		return failInvalid(log, check)
	}
	if checkImages {
		check := compose.DeepCheck(context.Background(), doc, compose.NewImageChecker())
		if !check.OK() {
			return failInvalid(log, check)
		}
	}

	if err := compose.Write(dest, doc); err != nil {
		return failError(log, "writing compose document failed", "error", err)
	}
	return succeed(log, "docker-compose configured")
}
