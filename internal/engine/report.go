package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/shapes2video/internal/system"
)

func (p *Project) report(sum Summary) {
	log.Info().
		Int("total", sum.Total).
		Int("written", sum.Written).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Dur("elapsed", sum.Elapsed).
		Msg("[+++] Run finished")

	if !p.Config.ShowStats {
		return
	}

	usage, err := system.CurrentUsage()
	if err != nil {
		log.Warn().Err(err).Msg("[!] Resource usage unavailable")
	}
	rate := 0.0
	if secs := sum.Elapsed.Seconds(); secs > 0 {
		rate = float64(sum.Written) / secs
	}

	fmt.Print(formatReport(p.Config.BuildVersion, sum, usage, rate))

	if p.Config.BenchmarkLog == "" {
		return
	}
	entry := fmt.Sprintf("[%s] Build: %s | Plan seed: %d | Samples: %d | Written: %d | Failed: %d | Total: %.2fs | Samples/s: %.2f | RSS: %.1fMiB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.Plan.Seed,
		sum.Total,
		sum.Written,
		sum.Failed,
		sum.Elapsed.Seconds(),
		rate,
		system.MiB(usage.RSSBytes),
	)
	if err := appendLine(p.Config.BenchmarkLog, entry); err != nil {
		log.Warn().Err(err).Msgf("[!] Could not write %s", p.Config.BenchmarkLog)
	}
}

func formatReport(build string, sum Summary, u system.Usage, rate float64) string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Samples: %d (written %d, skipped %d, failed %d)\n"+
			"Samples/s: %.2f\n"+
			"RSS: %.1f MiB | CPU: %.1f%% | Host memory used: %.1f%%\n"+
			"----------------------------\n",
		build, sum.Elapsed.Seconds(),
		sum.Total, sum.Written, sum.Skipped, sum.Failed,
		rate,
		system.MiB(u.RSSBytes), u.CPUPercent, u.HostUsedPct,
	)
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
