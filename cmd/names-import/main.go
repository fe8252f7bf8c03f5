// 古名覆盖表维护工具：批量导入 JSON 或交互式增删查
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"realm-map/internal/migrate"
	"realm-map/internal/naming"
	"realm-map/internal/store"
	"realm-map/internal/utils"
)

// 文档注释：读取 JSON 条目文件
// 格式：[{"modern":"India","alternate":"Bharata Khanda"}, ...]
// 约束：名称先去除首尾空白；文件内现代名重复视为错误，与内置表构建规则一致。
func readEntries(path string) ([]naming.Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var xs []naming.Entry
	if err := json.Unmarshal(b, &xs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// 与写库时的规整一致，避免 "India" 与 "India " 在校验时被视为不同键
	for i := range xs {
		xs[i].Modern = strings.TrimSpace(xs[i].Modern)
		xs[i].Alternate = strings.TrimSpace(xs[i].Alternate)
	}
	if _, err := naming.Build(xs); err != nil {
		return nil, err
	}
	return xs, nil
}

func importFile(ctx context.Context, st *store.Store, path string) (int, error) {
	xs, err := readEntries(path)
	if err != nil {
		return 0, err
	}
	if err := st.UpsertNames(ctx, xs, "import:"+path); err != nil {
		return 0, err
	}
	return len(xs), nil
}

// splitPair：解析 "<modern> = <alternate>"；名称可含空格
func splitPair(s string) (string, string, bool) {
	m, a, ok := strings.Cut(s, "=")
	m, a = strings.TrimSpace(m), strings.TrimSpace(a)
	return m, a, ok && m != "" && a != ""
}

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  set <modern> = <alternate>")
	fmt.Println("  del <modern>")
	fmt.Println("  get <modern>")
	fmt.Println("  list [limit]")
	fmt.Println("  import <file.json>")
	fmt.Println("  help")
	fmt.Println("  exit")
}

func main() {
	var envFile, importPath string
	for i := 1; i < len(os.Args); i++ {
		switch {
		case os.Args[i] == "--env" && i+1 < len(os.Args):
			envFile = os.Args[i+1]
			i++
		case os.Args[i] == "--import" && i+1 < len(os.Args):
			importPath = os.Args[i+1]
			i++
		case strings.HasSuffix(os.Args[i], ".env"):
			envFile = os.Args[i]
		}
	}
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load(".env")
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		fmt.Println("db error:", err)
		os.Exit(1)
	}
	defer db.Close()
	ctx := context.Background()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		fmt.Println("schema error:", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)

	if importPath != "" {
		n, err := importFile(ctx, st, importPath)
		if err != nil {
			fmt.Println("import error:", err, "written:", n)
			os.Exit(1)
		}
		fmt.Println("imported", n)
		return
	}

	fmt.Println("realm names cli ready")
	printHelp()
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		switch strings.ToLower(cmd) {
		case "exit", "quit":
			cancel()
			return
		case "help":
			printHelp()
		case "set", "add":
			m, a, ok := splitPair(rest)
			if !ok {
				fmt.Println("usage: set <modern> = <alternate>")
				break
			}
			if err := st.UpsertName(cctx, m, a, "cli"); err != nil {
				fmt.Println("error:", err)
			} else {
				fmt.Println("ok")
			}
		case "del":
			if rest == "" {
				fmt.Println("usage: del <modern>")
				break
			}
			err := st.DeleteName(cctx, rest)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				fmt.Println("not found")
			case err != nil:
				fmt.Println("error:", err)
			default:
				fmt.Println("ok")
			}
		case "get":
			if rest == "" {
				fmt.Println("usage: get <modern>")
				break
			}
			rec, err := st.GetName(cctx, rest)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if alt, ok := naming.Builtin().Lookup(rest); ok {
					fmt.Printf("%s -> %s (builtin)\n", rest, alt)
				} else {
					fmt.Println("not found")
				}
			case err != nil:
				fmt.Println("error:", err)
			default:
				fmt.Printf("%s -> %s | %s\n", rec.Modern, rec.Alternate, rec.Note)
			}
		case "list":
			limit := 20
			if n, e := strconv.Atoi(rest); e == nil && n > 0 {
				limit = n
			}
			xs, err := st.ListNames(cctx, limit)
			if err != nil {
				fmt.Println("error:", err)
				break
			}
			for _, r := range xs {
				fmt.Printf("%s -> %s | %s\n", r.Modern, r.Alternate, r.Note)
			}
		case "import":
			n, err := importFile(cctx, st, rest)
			if err != nil {
				fmt.Println("error:", err, "written:", n)
			} else {
				fmt.Println("imported", n)
			}
		default:
			fmt.Println("unknown command")
		}
		cancel()
	}
}
