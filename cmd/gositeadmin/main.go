/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"gositeadmin/internal/api"
	"gositeadmin/internal/config"
	"gositeadmin/internal/contentpack"
	"gositeadmin/internal/crash"
	applog "gositeadmin/internal/log"
	"gositeadmin/internal/report"
	"gositeadmin/internal/ui"
	"gositeadmin/internal/version"
)

func usage() {
	fmt.Println("Site Admin — desktop client for the content backend")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gositeadmin version|-v|--version   Show version")
	fmt.Println("  gositeadmin login <email>          Sign in and store the token in the keychain")
	fmt.Println("  gositeadmin status                 Validate the stored token against the backend")
	fmt.Println("  gositeadmin logout                 Remove the stored token")
	fmt.Println("  gositeadmin export <file>          Export all site content to a JSON pack")
	fmt.Println("  gositeadmin import <file>          Validate and push a JSON pack")
	fmt.Println("  gositeadmin report <file>          Write a PDF content inventory")
	fmt.Println("  gositeadmin ui                     Launch the desktop UI (build with -tags fyne)")
}

func newClient() (*api.Client, error) {
	cfg, token, err := config.Load()
	if err != nil {
		return nil, err
	}
	var opts []api.Option
	if cfg.API.TimeoutMs > 0 {
		opts = append(opts, api.WithTimeout(time.Duration(cfg.API.TimeoutMs)*time.Millisecond))
	}
	if cfg.API.TLSInsecure {
		opts = append(opts, api.WithInsecureTLS())
	}
	return api.NewClient(cfg.API.BaseURL, token, opts...), nil
}

func fatal(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer crash.Recover("", nil)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Site Admin")
			fmt.Println(version.String())
			return
		case "login":
			if len(args) < 3 {
				fmt.Println("login requires <email>")
				usage()
				os.Exit(2)
			}
			email := args[2]
			fmt.Print("Password: ")
			pw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				fatal(l, "password read failed", err)
			}
			client, err := newClient()
			if err != nil {
				fatal(l, "config load failed", err)
			}
			token, user, err := client.Login(ctx, email, string(pw))
			if err != nil {
				fatal(l, "login failed", err)
			}
			if err := config.StoreToken(token); err != nil {
				fatal(l, "token store failed", err)
			}
			l.Info("logged in", slog.String("user", user.Email))
			fmt.Println("Signed in as", user.Email)
			return
		case "status":
			client, err := newClient()
			if err != nil {
				fatal(l, "config load failed", err)
			}
			user, err := client.CurrentUser(ctx)
			if err != nil {
				if api.IsUnauthorized(err) {
					fmt.Println("Not signed in (token missing or expired).")
					os.Exit(1)
				}
				fatal(l, "status check failed", err)
			}
			fmt.Println("Signed in as", user.Email)
			return
		case "logout":
			if err := config.ClearToken(); err != nil {
				fatal(l, "logout failed", err)
			}
			fmt.Println("Signed out.")
			return
		case "export":
			if len(args) < 3 {
				fmt.Println("export requires <file>")
				usage()
				os.Exit(2)
			}
			dest, _ := filepath.Abs(args[2])
			client, err := newClient()
			if err != nil {
				fatal(l, "config load failed", err)
			}
			l.Info("export pack", slog.String("dest", dest))
			if err := contentpack.Export(ctx, client, dest); err != nil {
				fatal(l, "export failed", err)
			}
			fmt.Println("Exported site content to", dest)
			return
		case "import":
			if len(args) < 3 {
				fmt.Println("import requires <file>")
				usage()
				os.Exit(2)
			}
			src, _ := filepath.Abs(args[2])
			pack, err := contentpack.Load(src)
			if err != nil {
				fatal(l, "pack load failed", err)
			}
			client, err := newClient()
			if err != nil {
				fatal(l, "config load failed", err)
			}
			l.Info("import pack", slog.String("src", src))
			st, err := contentpack.Apply(ctx, client, pack)
			if err != nil {
				fatal(l, "import failed", err)
			}
			fmt.Printf("Imported %d projects (%d rows) and %d slides.\n", st.Projects, st.Rows, st.Slides)
			return
		case "report":
			if len(args) < 3 {
				fmt.Println("report requires <file>")
				usage()
				os.Exit(2)
			}
			dest, _ := filepath.Abs(args[2])
			client, err := newClient()
			if err != nil {
				fatal(l, "config load failed", err)
			}
			l.Info("write report", slog.String("dest", dest))
			if err := report.WriteInventory(ctx, client, dest); err != nil {
				fatal(l, "report failed", err)
			}
			fmt.Println("Report written to", dest)
			return
		case "ui":
			if err := ui.Run(); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}
