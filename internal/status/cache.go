package status

import (
	"sync"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// Cache はインメモリのライブキャッシュ。
// 読み手に提供される唯一の正本であり、更新はパイプライン経由でのみ行う。
// グローバル変数ではなくコンストラクタで生成し、利用側へ注入する。
type Cache struct {
	mu       sync.RWMutex
	statuses model.StatusMap
}

// NewCache は空のCacheを生成する。
func NewCache() *Cache {
	return &Cache{statuses: model.StatusMap{}}
}

// Replace はキャッシュ全体を置き換える。起動時のストアからの再構築に使用する。
// allはコピーされるため、呼び出し後に呼び出し側で変更しても安全。
func (c *Cache) Replace(all model.StatusMap) {
	copied := deepCopy(all)

	c.mu.Lock()
	c.statuses = copied
	c.mu.Unlock()
}

// Set は(employeeID, day)のテキストを設定する。後勝ちで上書きする。
func (c *Cache) Set(employeeID, day, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	days, ok := c.statuses[employeeID]
	if !ok {
		days = map[string]string{}
		c.statuses[employeeID] = days
	}
	days[day] = text
}

// Remove は(employeeID, day)のエントリを削除する。
// 従業員のエントリが空になった場合は従業員キーごと取り除く。
func (c *Cache) Remove(employeeID, day string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	days, ok := c.statuses[employeeID]
	if !ok {
		return
	}
	delete(days, day)
	if len(days) == 0 {
		delete(c.statuses, employeeID)
	}
}

// Get は(employeeID, day)のテキストを返す。存在しない場合は("", false)。
func (c *Cache) Get(employeeID, day string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	days, ok := c.statuses[employeeID]
	if !ok {
		return "", false
	}
	text, ok := days[day]
	return text, ok
}

// Snapshot は全内容のディープコピーを返す。
// 書き込み中の中間状態が見えることはない。返り値は呼び出し側が自由に変更してよい。
func (c *Cache) Snapshot() model.StatusMap {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return deepCopy(c.statuses)
}

func deepCopy(src model.StatusMap) model.StatusMap {
	dst := make(model.StatusMap, len(src))
	for employeeID, days := range src {
		inner := make(map[string]string, len(days))
		for day, text := range days {
			inner[day] = text
		}
		dst[employeeID] = inner
	}
	return dst
}
