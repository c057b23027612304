package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voicekey/internal/narrate"
)

const recordPrefix = "RecordTemp_"

func tempPath(dir, prefix, ext string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	return filepath.Join(dir, prefix+id+"."+ext)
}

// removeStale deletes recordings and speech files left by an earlier run.
func removeStale(dir string, log *zap.SugaredLogger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debugw("read temp dir failed", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasPrefix(name, recordPrefix) || strings.HasPrefix(name, narrate.TempPrefix)) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			log.Debugw("remove stale file failed", "file", path, "error", err)
		} else {
			log.Debugw("removed stale file", "file", path)
		}
	}
}

// settle removes the recording, or with KEEP_CACHE moves it into the cache
// directory next to its transcript.
func (a *App) settle(wav, text string, ok bool) {
	if !a.cfg.KeepCache || a.cfg.CacheDir == "" {
		if err := os.Remove(wav); err != nil && !os.IsNotExist(err) {
			a.log.Debugw("remove recording failed", "file", wav, "error", err)
		}
		return
	}
	base := filepath.Join(a.cfg.CacheDir, fmt.Sprintf("audio-%s", time.Now().Format("2006-01-02-15.04.05.000")))
	if err := os.Rename(wav, base+filepath.Ext(wav)); err != nil {
		a.log.Warnw("moving recording to cache failed", "error", err)
		_ = os.Remove(wav)
		return
	}
	if ok && text != "" {
		if err := os.WriteFile(base+".txt", []byte(text), 0644); err != nil {
			a.log.Warnw("writing transcript to cache failed", "error", err)
		}
	}
}
