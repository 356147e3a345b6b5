// Package version reports build metadata. The variables are set with
// -ldflags at release time.
package version

import (
	goversion "github.com/caarlos0/go-version"
)

const (
	Application = "shift_console"
	Description = "Administrative console for hospital shift scheduling"
	WebSite     = "https://github.com/adamanr/shift_console"
)

var (
	Version   = "0.1.0"
	Commit    = ""
	TreeState = ""
	Date      = ""
	BuiltBy   = ""
)

func Info() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(Application, Description, WebSite),
		func(i *goversion.Info) {
			if Commit != "" {
				i.GitCommit = Commit
			}
			if Version != "" {
				i.GitVersion = Version
			}
			if TreeState != "" {
				i.GitTreeState = TreeState
			}
			if Date != "" {
				i.BuildDate = Date
			}
			if BuiltBy != "" {
				i.BuiltBy = BuiltBy
			}
		},
	)
}
