// Package pathhint suggests on-disk locations where save containers are
// usually found, per platform. The hints are informational; the server
// never touches the client's filesystem.
package pathhint

import "saveedit/internal/savefile"

// Hint describes one candidate save directory.
type Hint struct {
	Platform    savefile.Platform `json:"platform"`
	Path        string            `json:"path"`
	Description string            `json:"description"`
}

var hints = []Hint{
	{
		Platform:    savefile.PlatformSteam,
		Path:        `%USERPROFILE%\Documents\My Games\Borderlands 4\Saved\SaveGames\<steam-id>`,
		Description: "Windows, Steam install",
	},
	{
		Platform:    savefile.PlatformSteam,
		Path:        `~/.steam/steam/steamapps/compatdata/*/pfx/drive_c/users/steamuser/Documents/My Games/Borderlands 4/Saved/SaveGames/<steam-id>`,
		Description: "Linux, Steam Proton prefix",
	},
	{
		Platform:    savefile.PlatformEpic,
		Path:        `%USERPROFILE%\Documents\My Games\Borderlands 4\Saved\SaveGames\<epic-id>`,
		Description: "Windows, Epic Games install",
	},
}

// Suggestions returns the hints matching the given platform. PlatformAuto
// returns every hint.
func Suggestions(platform savefile.Platform) []Hint {
	if platform == savefile.PlatformAuto {
		out := make([]Hint, len(hints))
		copy(out, hints)
		return out
	}
	var out []Hint
	for _, h := range hints {
		if h.Platform == platform {
			out = append(out, h)
		}
	}
	return out
}
