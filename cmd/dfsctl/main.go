// Command dfsctl is an interactive shell over the client library,
// directly grounded on the teacher's toolkit/cli/main.go
// (InitSetup/InitApp/enterCommand/loop) — a urfave/cli/v2 app whose
// Commands are re-run against tokenized REPL input, with fatih/color
// painting the prompt the same way the teacher's enterCommand does.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	dfsclient "chunkstore/internal/client"
	"chunkstore/internal/types"
)

var errQuit = errors.New("quit")

type shellEnv struct {
	client *dfsclient.Client
	cwd    string
}

var env = &shellEnv{cwd: "/"}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	if env.cwd == "/" {
		return "/" + p
	}
	return env.cwd + "/" + p
}

func newApp() *cli.App {
	return &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "touch",
				Usage: "touch <path> [mode]",
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() < 1 {
						return errors.New("touch: missing path")
					}
					perm := uint32(0644)
					if ctx.Args().Len() >= 2 {
						if v, err := strconv.ParseUint(ctx.Args().Get(1), 8, 32); err == nil {
							perm = uint32(v)
						}
					}
					return env.client.CreateFile(resolvePath(ctx.Args().First()), perm)
				},
			},
			{
				Name:  "rm",
				Usage: "rm <path>",
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() < 1 {
						return errors.New("rm: missing path")
					}
					return env.client.DeleteFile(resolvePath(ctx.Args().First()))
				},
			},
			{
				Name:  "mkdir",
				Usage: "mkdir <path>",
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() < 1 {
						return errors.New("mkdir: missing path")
					}
					return env.client.Mkdir(resolvePath(ctx.Args().First()))
				},
			},
			{
				Name:    "stat",
				Aliases: []string{"ls"},
				Usage:   "stat <path>",
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() < 1 {
						return errors.New("stat: missing path")
					}
					meta, err := env.client.Stat(resolvePath(ctx.Args().First()))
					if err != nil {
						return err
					}
					fmt.Printf("%-30s size=%-10d chunks=%-4d dir=%v\n", meta.Path, meta.FileSize, len(meta.Chunks), meta.IsDirectory)
					return nil
				},
			},
			{
				Name:  "write",
				Usage: "write <path> <text>",
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() < 2 {
						return errors.New("write: usage write <path> <text>")
					}
					path := resolvePath(ctx.Args().First())
					data := []byte(strings.Join(ctx.Args().Slice()[1:], " "))
					fd, err := env.client.Open(path, true)
					if err != nil {
						return err
					}
					defer env.client.CloseFile(fd)
					n, err := env.client.Write(fd, 0, data)
					if err != nil {
						return err
					}
					fmt.Printf("wrote %d bytes to %v\n", n, path)
					return nil
				},
			},
			{
				Name:  "read",
				Usage: "read <path>",
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() < 1 {
						return errors.New("read: missing path")
					}
					path := resolvePath(ctx.Args().First())
					fd, err := env.client.Open(path, false)
					if err != nil {
						return err
					}
					defer env.client.CloseFile(fd)
					buf := make([]byte, 4096)
					n, err := env.client.Read(fd, 0, buf)
					if err != nil && err != io.EOF {
						return err
					}
					fmt.Println(string(buf[:n]))
					return nil
				},
			},
			{
				Name:    "exit",
				Aliases: []string{"quit"},
				Action: func(ctx *cli.Context) error {
					return errQuit
				},
			},
		},
	}
}

// enterCommand prompts and tokenizes one line of input, grounded on the
// teacher's enterCommand (color-coded "gdfs://[@cwd]>" prompt, split on
// spaces, prepend the program name so urfave/cli treats it as argv[0]).
func enterCommand(r *bufio.Reader) ([]string, error) {
	fmt.Printf("%s[@%s]%s ", color.BlueString("dfsctl://"), color.RedString(env.cwd), color.GreenString(">"))

	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	sep := "\n"
	if runtime.GOOS == "windows" {
		sep = "\r\n"
	}
	line = strings.TrimRight(line, sep)

	tokens := []string{"dfsctl"}
	for _, v := range strings.Split(line, " ") {
		if v != "" {
			tokens = append(tokens, v)
		}
	}
	return tokens, nil
}

func loop() {
	app := newApp()
	r := bufio.NewReader(os.Stdin)
	for {
		tokens, err := enterCommand(r)
		if err != nil {
			break
		}
		if len(tokens) == 1 {
			continue
		}
		if err := app.Run(tokens); err != nil {
			if err == errQuit {
				break
			}
			fmt.Println(color.RedString("error: %v", err))
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: dfsctl <directory-ip:port>")
	}
	env.client = dfsclient.New(types.Addr(os.Args[1]))
	defer env.client.Close()

	fmt.Println("Welcome to the chunkstore shell.")
	fmt.Printf("directory: %v cwd: %v\n", os.Args[1], env.cwd)
	loop()
}
