//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/backend"
	"github.com/eliteGoblin/netmenu/internal/config"
	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/infra"
	"github.com/eliteGoblin/netmenu/internal/usecase"
	"github.com/eliteGoblin/netmenu/test/fixtures"
)

const staticConfig = `dmenu_cmd = "dmenu"

[[actions]]
display = "A"
cmd = "printf a"

[[actions]]
display = "B"
cmd = "exit 3"

[[actions]]
display = "Disable tailscale"
cmd = "echo tailscale down"
`

var _ = Describe("Dispatcher", func() {
	var (
		tmpDir     string
		cfg        config.Config
		vpn        *fixtures.StubBackend
		wifi       *fixtures.StubBackend
		picker     *fixtures.StubPicker
		executor   *fixtures.CountingExecutor
		dispatcher *usecase.Dispatcher
	)

	build := func(backends ...domain.Backend) {
		registry := backend.NewRegistry(backends...)
		executor = &fixtures.CountingExecutor{
			Next: infra.NewExecutor(infra.NewInteractiveRunner(), registry, zap.NewNop()),
		}
		dispatcher = usecase.NewDispatcher(
			config.NewStaticSource(cfg.Actions),
			registry,
			picker,
			executor,
			cfg.BackendTimeout(),
			zap.NewNop(),
		)
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "netmenu-integration-*")
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(tmpDir, "config.toml")
		Expect(os.WriteFile(path, []byte(staticConfig), 0644)).To(Succeed())
		cfg, err = config.Load(path)
		Expect(err).NotTo(HaveOccurred())

		vpn = fixtures.NewStubBackend("vpn", domain.SourceExitNode,
			domain.BackendOption{ID: "x", Label: "X", Active: true},
			domain.BackendOption{ID: "y", Label: "Y"},
		)
		wifi = fixtures.NewStubBackend("wifi", domain.SourceWifi,
			domain.BackendOption{ID: "cafe", Label: "Cafe"},
		)
		picker = &fixtures.StubPicker{}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("presenting", func() {
		It("should list static actions first, then the active backend option", func() {
			build(vpn, wifi)
			dispatcher.Run(context.Background())

			shown := picker.Last()
			Expect(shown).To(HaveLen(3 + 2 + 1))
			Expect(shown[:3]).To(Equal([]string{"A", "B", "Disable tailscale"}))
			Expect(shown[3]).To(ContainSubstring("X"))
			Expect(shown[4]).To(ContainSubstring("Y"))
			Expect(shown[5]).To(ContainSubstring("Cafe"))
		})

		It("should treat an unavailable backend as one with no options", func() {
			build(vpn, fixtures.NewStubBackend("wifi", domain.SourceWifi).Unavailable())
			dispatcher.Run(context.Background())
			withBroken := picker.Last()

			build(vpn, fixtures.NewStubBackend("wifi", domain.SourceWifi))
			dispatcher.Run(context.Background())

			Expect(withBroken).To(Equal(picker.Last()))
			Expect(withBroken).To(HaveLen(5))
		})

		It("should never present two identical entries", func() {
			dup := fixtures.NewStubBackend("dup", domain.SourceVPNControl,
				domain.BackendOption{ID: "down", Label: "Disable tailscale"},
				domain.BackendOption{ID: "down2", Label: "Disable tailscale"},
			)
			build(dup)
			dispatcher.Run(context.Background())

			seen := map[string]bool{}
			for _, e := range picker.Last() {
				Expect(seen).NotTo(HaveKey(e))
				seen[e] = true
			}
		})
	})

	Describe("cancelling", func() {
		It("should exit 0 without executing anything", func() {
			build(vpn, wifi)

			outcome := dispatcher.Run(context.Background())

			Expect(outcome.State).To(Equal(domain.StateCancelled))
			Expect(usecase.ExitCode(outcome)).To(Equal(0))
			Expect(executor.Calls()).To(Equal(0))
			Expect(vpn.Applied()).To(BeEmpty())
			Expect(wifi.Applied()).To(BeEmpty())
		})
	})

	Describe("executing a static action", func() {
		It("should run exactly the configured command once", func() {
			picker.Want = "Disable tailscale"
			build(vpn)

			outcome := dispatcher.Run(context.Background())

			Expect(outcome.State).To(Equal(domain.StateSucceeded))
			Expect(executor.Ran).To(Equal([]domain.Recipe{domain.ShellRecipe("echo tailscale down")}))
			Expect(outcome.Output).To(Equal("tailscale down\n"))
			Expect(usecase.ExitCode(outcome)).To(Equal(0))
		})

		It("should mirror the command's exit code on failure", func() {
			picker.Want = "B"
			build()

			outcome := dispatcher.Run(context.Background())

			Expect(outcome.State).To(Equal(domain.StateFailed))
			Expect(executor.Calls()).To(Equal(1))
			Expect(usecase.ExitCode(outcome)).To(Equal(3))
		})
	})

	Describe("executing a backend option", func() {
		It("should succeed when re-applying the active option", func() {
			picker.Want = "X"
			build(vpn)

			outcome := dispatcher.Run(context.Background())

			Expect(outcome.State).To(Equal(domain.StateSucceeded))
			Expect(vpn.Applied()).To(Equal([]string{"x"}))
			Expect(vpn.Changes()).To(Equal(0))
		})

		It("should route the selection to the owning backend", func() {
			picker.Want = "Cafe"
			build(vpn, wifi)

			outcome := dispatcher.Run(context.Background())

			Expect(outcome.State).To(Equal(domain.StateSucceeded))
			Expect(wifi.Applied()).To(Equal([]string{"cafe"}))
			Expect(vpn.Applied()).To(BeEmpty())
		})
	})

	Describe("slow backends", func() {
		It("should be skipped after the per-backend timeout", func() {
			cfg.BackendTimeoutMs = 50
			slow := &slowBackend{StubBackend: fixtures.NewStubBackend("slow", domain.SourceBluetooth,
				domain.BackendOption{ID: "AA", Label: "Headphones"})}
			build(vpn, slow)

			start := time.Now()
			dispatcher.Run(context.Background())

			Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
			Expect(picker.Last()).NotTo(ContainElement(ContainSubstring("Headphones")))
		})
	})
})

var _ = Describe("Configuration", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "netmenu-config-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("should round-trip the default actions byte for byte", func() {
		path := filepath.Join(tmpDir, "network-dmenu", "config.toml")

		cfg, created, err := config.LoadOrCreate(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())

		Expect(config.NewStaticSource(cfg.Actions).Actions()).
			To(Equal(config.NewStaticSource(config.Default().Actions).Actions()))
	})

	It("should report a malformed file before any backend is queried", func() {
		path := filepath.Join(tmpDir, "config.toml")
		Expect(os.WriteFile(path, []byte("[[actions]\n"), 0644)).To(Succeed())

		_, _, err := config.LoadOrCreate(path)
		var cfgErr *domain.ConfigError
		Expect(err).To(BeAssignableToTypeOf(cfgErr))
	})
})

// slowBackend blocks ListOptions until its context is done.
type slowBackend struct {
	*fixtures.StubBackend
}

func (s *slowBackend) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
