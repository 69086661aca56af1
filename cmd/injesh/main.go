// Command injesh gets a shell (or any command) running inside a debug
// view of a running Docker container's root filesystem, without
// modifying or rebuilding the container's image. Grounded on lazydocker's main.go for
// the flaggy wiring and build-info/KnownError handling, and on
// original_source/src/cli.rs for the verb set (init, launch, exec,
// delete, list, file pull, file push).
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/injesh/injesh/pkg/app"
	"github.com/injesh/injesh/pkg/nsjoin"
	"github.com/injesh/injesh/pkg/orchestrator"
	"github.com/integrii/flaggy"
	"github.com/samber/lo"
)

const defaultVersion = "unversioned"

var (
	commit      string
	version     = defaultVersion
	date        string
	buildSource = "unknown"

	debuggingFlag = false
)

func main() {
	// Before any flag parsing: RunChild never returns on success, so this
	// must be the very first thing main does. See nsjoin.ReexecArg's doc
	// comment for why injesh re-execs itself instead of forking.
	if len(os.Args) > 1 && os.Args[1] == nsjoin.ReexecArg {
		nsjoin.RunChild(os.Args[2:])
		return
	}

	updateBuildInfo()

	info := fmt.Sprintf(
		"%s\nDate: %s\nBuildSource: %s\nCommit: %s\nOS: %s\nArch: %s",
		version, date, buildSource, commit, runtime.GOOS, runtime.GOARCH,
	)

	flaggy.SetName("injesh")
	flaggy.SetDescription("Debug a running Docker container's root filesystem without modifying its image")
	flaggy.DefaultParser.AdditionalHelpPrepend = "https://github.com/injesh/injesh"
	flaggy.Bool(&debuggingFlag, "d", "debug", "write a debug log instead of discarding it")
	flaggy.SetVersion(info)

	initCmd := flaggy.NewSubcommand("init")
	initCmd.Description = "create injesh's state directories under $HOME/.injesh"

	listCmd := flaggy.NewSubcommand("list")
	listCmd.Description = "list active debug sessions"

	var launchTarget, launchName, launchDistribution, launchVersionStr, launchRootfsPath, launchDockerRef, launchLxdRef, launchShell string
	var launchDetail []string
	launchCmd := flaggy.NewSubcommand("launch")
	launchCmd.Description = "inject a debug rootfs beneath a container and exec a shell in it"
	launchCmd.AddPositionalValue(&launchTarget, "container", 1, true, "container name or id")
	launchCmd.String(&launchName, "n", "name", "debug session name (defaults to the container token plus a random 8-character suffix)")
	launchCmd.String(&launchDistribution, "", "rootfs-distribution", "LXD image distribution, e.g. ubuntu")
	launchCmd.String(&launchVersionStr, "", "rootfs-version", "LXD image version, e.g. 22.04")
	launchCmd.String(&launchRootfsPath, "", "rootfs-dir", "use a local directory as the debug rootfs")
	launchCmd.String(&launchDockerRef, "", "rootfs-docker-image", "use a pulled Docker image as the debug rootfs (unimplemented)")
	launchCmd.String(&launchLxdRef, "", "rootfs-lxd-remote", "use a remote LXD image ref as the debug rootfs (unimplemented)")
	launchCmd.String(&launchShell, "s", "shell", "command to exec, default /bin/bash")
	launchCmd.StringSlice(&launchDetail, "", "arg", "extra argv entries for the command")

	var execName, execShell string
	var execDetail []string
	execCmd := flaggy.NewSubcommand("exec")
	execCmd.Description = "attach to an existing debug session"
	execCmd.AddPositionalValue(&execName, "session", 1, true, "debug session name")
	execCmd.String(&execShell, "s", "shell", "command to exec, defaults to the session's recorded shell")
	execCmd.StringSlice(&execDetail, "", "arg", "extra argv entries for the command")

	var deleteName string
	deleteCmd := flaggy.NewSubcommand("delete")
	deleteCmd.Description = "dissolve a debug session's overlay and remove its state"
	deleteCmd.AddPositionalValue(&deleteName, "session", 1, true, "debug session name")

	fileCmd := flaggy.NewSubcommand("file")
	fileCmd.Description = "copy files into or out of a debug session (unimplemented)"
	var pullName, pullRemote, pullLocal string
	pullCmd := flaggy.NewSubcommand("pull")
	pullCmd.AddPositionalValue(&pullName, "session", 1, true, "debug session name")
	pullCmd.AddPositionalValue(&pullRemote, "remote-path", 2, true, "path inside the container")
	pullCmd.AddPositionalValue(&pullLocal, "local-path", 3, true, "destination on the host")
	var pushName, pushLocal, pushRemote string
	pushCmd := flaggy.NewSubcommand("push")
	pushCmd.AddPositionalValue(&pushName, "session", 1, true, "debug session name")
	pushCmd.AddPositionalValue(&pushLocal, "local-path", 2, true, "path on the host")
	pushCmd.AddPositionalValue(&pushRemote, "remote-path", 3, true, "destination inside the container")
	fileCmd.AttachSubcommand(pullCmd, 1)
	fileCmd.AttachSubcommand(pushCmd, 1)

	flaggy.AttachSubcommand(initCmd, 1)
	flaggy.AttachSubcommand(listCmd, 1)
	flaggy.AttachSubcommand(launchCmd, 1)
	flaggy.AttachSubcommand(execCmd, 1)
	flaggy.AttachSubcommand(deleteCmd, 1)
	flaggy.AttachSubcommand(fileCmd, 1)

	flaggy.Parse()

	a, err := app.NewApp(version, commit, date, buildSource, debuggingFlag)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer a.Close()

	switch {
	case initCmd.Used:
		err = a.Orchestrator.Init()
	case listCmd.Used:
		err = runList(a)
	case launchCmd.Used:
		opt, rootfsErr := parseRootfsOption(launchRootfsPath, launchDistribution, launchVersionStr, launchDockerRef, launchLxdRef)
		if rootfsErr != nil {
			err = rootfsErr
			break
		}
		name := launchName
		if name == "" {
			name = launchTarget + "-" + uuid.NewString()[:8]
		}
		cmd := nsjoin.Command{Main: launchShell, Detail: launchDetail}
		err = a.Orchestrator.Launch(launchTarget, opt, name, cmd)
	case execCmd.Used:
		cmd := nsjoin.Command{Main: execShell, Detail: execDetail}
		err = a.Orchestrator.Exec(execName, cmd)
	case deleteCmd.Used:
		err = a.Orchestrator.Delete(deleteName)
	case pullCmd.Used:
		err = a.Orchestrator.PullFile(pullName, pullRemote, pullLocal)
	case pushCmd.Used:
		err = a.Orchestrator.PushFile(pushName, pushLocal, pushRemote)
	default:
		flaggy.ShowHelp("")
		os.Exit(0)
	}

	if err != nil {
		if app.KnownError(err) {
			log.Println(err.Error())
			os.Exit(1)
		}
		if client.IsErrConnectionFailed(err) {
			log.Println("could not reach the Docker engine; is it running?")
			os.Exit(1)
		}
		a.Log.Error(err.Error())
		log.Fatalf("an unexpected error occurred:\n\n%s", err.Error())
	}
}

func runList(a *app.App) error {
	names, err := a.Orchestrator.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// parseRootfsOption enforces launch's at-most-one-of-four rootfs flags,
// mirroring original_source/src/parser.rs's check_rootfs.
func parseRootfsOption(dir, distribution, versionStr, dockerRef, lxdRef string) (orchestrator.RootFSOption, error) {
	set := 0
	for _, v := range []string{dir, dockerRef, lxdRef} {
		if v != "" {
			set++
		}
	}
	if distribution != "" || versionStr != "" {
		set++
	}
	if set > 1 {
		return orchestrator.RootFSOption{}, fmt.Errorf("only one of --rootfs-dir, --rootfs-distribution/--rootfs-version, --rootfs-docker-image, --rootfs-lxd-remote may be given")
	}

	switch {
	case dir != "":
		return orchestrator.RootFSOption{Kind: orchestrator.RootFSLocalDir, Path: dir}, nil
	case distribution != "":
		return orchestrator.RootFSOption{Kind: orchestrator.RootFSLxdImage, Distribution: distribution, Version: versionStr}, nil
	case dockerRef != "":
		return orchestrator.RootFSOption{Kind: orchestrator.RootFSDockerImage, Ref: dockerRef}, nil
	case lxdRef != "":
		return orchestrator.RootFSOption{Kind: orchestrator.RootFSLxdRemote, Ref: lxdRef}, nil
	default:
		return orchestrator.RootFSOption{Kind: orchestrator.RootFSNone}, nil
	}
}

func updateBuildInfo() {
	if version == defaultVersion {
		if buildInfo, ok := debug.ReadBuildInfo(); ok {
			revision, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.revision"
			})
			if ok {
				commit = revision.Value
				version = safeTruncate(revision.Value, 7)
			}

			t, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.time"
			})
			if ok {
				date = t.Value
			}
		}
	}
}

func safeTruncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
