package rtty

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the decoded text TCP service using DNS-SD
 *
 * Description:
 *
 *     Nobody wants to type in IP addresses and ports.  Announce the
 *     text service so it can be found automatically on the local network.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package, so no
 *     system daemon or C library is needed.
 */

import (
	"context"
	"fmt"
	"os"

	"github.com/brutella/dnssd"
)

const DNSSDService = "_rtty._tcp"

func dnsSDDefaultName() string {
	var hostname, err = os.Hostname()
	if err != nil || hostname == "" {
		return "RTTY decoder"
	}

	return fmt.Sprintf("RTTY decoder on %s", hostname)
}

// DNSSDAnnounce advertises the service until ctx is cancelled.
// Failure is logged and otherwise ignored; the service still works.
func DNSSDAnnounce(ctx context.Context, name string, port int) {
	if name == "" {
		name = dnsSDDefaultName()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNSSDService,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		logger.Error("DNS-SD: Failed to create service", "err", svErr)
		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		logger.Error("DNS-SD: Failed to create responder", "err", rpErr)
		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		logger.Error("DNS-SD: Failed to add service", "err", addErr)
		return
	}

	logger.Info("DNS-SD: Announcing text service", "port", port, "name", name)

	go func() {
		var respondErr = rp.Respond(ctx)
		if respondErr != nil && ctx.Err() == nil {
			logger.Error("DNS-SD: Responder error", "err", respondErr)
		}
	}()
}
