package badge

import "sort"

// Category 标识徽章所属的活动类别
type Category string

const (
	CategoryTask    Category = "task"
	CategoryJournal Category = "journal"
	CategoryHabit   Category = "habit"
)

// 徽章标识常量，与存储中的 badge_id 一一对应，定义后不可变更
const (
	TaskDaily             = "task_daily"
	TaskStreak3           = "task_streak_3"
	TaskStreak7           = "task_streak_7"
	TaskStreak30          = "task_streak_30"
	JournalStreak3        = "journal_streak_3"
	JournalStreak7        = "journal_streak_7"
	JournalStreak30       = "journal_streak_30"
	JournalDeepReflection = "journal_deep_reflection"
	HabitDaily            = "habit_daily"
	HabitStreak3          = "habit_streak_3"
	HabitStreak7          = "habit_streak_7"
	HabitStreak30         = "habit_streak_30"
)

// 各类资格阈值
const (
	// TasksPerDayGoal 单日完成任务数达到该值即视为当天达标
	TasksPerDayGoal = 3
	// JournalStreakWords 单篇日记字数达到该值，当天计入日记连胜
	JournalStreakWords = 350
	// DeepReflectionWords 单篇日记字数达到该值即触发一次性深度反思徽章
	DeepReflectionWords = 500
)

// Definition 描述目录中的一条徽章定义。
// ID 全局唯一；IsStreak 为真时 DaysRequired 表示连胜档位天数，
// 否则为单日/一次性徽章，DaysRequired 固定为 1。
// 展示字段（Name/Description/Icon）不参与任何判定逻辑。
type Definition struct {
	ID           string
	Category     Category
	IsStreak     bool
	DaysRequired int
	Name         string
	Description  string
	Icon         string
}

// catalog 是进程启动即固定的徽章目录，运行期只读
var catalog = []Definition{
	{ID: TaskDaily, Category: CategoryTask, IsStreak: false, DaysRequired: 1, Name: "高效一天", Description: "单日完成 3 个任务", Icon: "✅"},
	{ID: TaskStreak3, Category: CategoryTask, IsStreak: true, DaysRequired: 3, Name: "任务三连", Description: "连续 3 天每天完成 3 个任务", Icon: "🔥"},
	{ID: TaskStreak7, Category: CategoryTask, IsStreak: true, DaysRequired: 7, Name: "任务七连", Description: "连续 7 天每天完成 3 个任务", Icon: "⚡"},
	{ID: TaskStreak30, Category: CategoryTask, IsStreak: true, DaysRequired: 30, Name: "任务大师", Description: "连续 30 天每天完成 3 个任务", Icon: "🏆"},
	{ID: JournalStreak3, Category: CategoryJournal, IsStreak: true, DaysRequired: 3, Name: "落笔三日", Description: "连续 3 天写下 350 字以上的日记", Icon: "✍️"},
	{ID: JournalStreak7, Category: CategoryJournal, IsStreak: true, DaysRequired: 7, Name: "笔耕一周", Description: "连续 7 天写下 350 字以上的日记", Icon: "📖"},
	{ID: JournalStreak30, Category: CategoryJournal, IsStreak: true, DaysRequired: 30, Name: "日记常青", Description: "连续 30 天写下 350 字以上的日记", Icon: "🌲"},
	{ID: JournalDeepReflection, Category: CategoryJournal, IsStreak: false, DaysRequired: 1, Name: "深度反思", Description: "写下一篇 500 字以上的日记", Icon: "🌊"},
	{ID: HabitDaily, Category: CategoryHabit, IsStreak: false, DaysRequired: 1, Name: "自律一天", Description: "当天完成全部活跃习惯", Icon: "🌞"},
	{ID: HabitStreak3, Category: CategoryHabit, IsStreak: true, DaysRequired: 3, Name: "习惯三连", Description: "连续 3 天完成全部活跃习惯", Icon: "🌱"},
	{ID: HabitStreak7, Category: CategoryHabit, IsStreak: true, DaysRequired: 7, Name: "习惯七连", Description: "连续 7 天完成全部活跃习惯", Icon: "🌿"},
	{ID: HabitStreak30, Category: CategoryHabit, IsStreak: true, DaysRequired: 30, Name: "习惯养成", Description: "连续 30 天完成全部活跃习惯", Icon: "🌳"},
}

// Catalog 返回徽章目录的副本，调用方可安全遍历或重排
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup 按标识查找徽章定义
func Lookup(id string) (Definition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// StreakTiersDesc 返回指定类别的连胜档位，按 DaysRequired 从高到低排列。
// 解析器按此顺序扫描并在第一个满足的档位停下，避免一次发放多个档位。
func StreakTiersDesc(cat Category) []Definition {
	tiers := make([]Definition, 0, 3)
	for _, def := range catalog {
		if def.Category == cat && def.IsStreak {
			tiers = append(tiers, def)
		}
	}
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].DaysRequired > tiers[j].DaysRequired
	})
	return tiers
}

// Rank 返回徽章在目录中的位置，用于结果排序；未知标识排在末尾
func Rank(id string) int {
	for i, def := range catalog {
		if def.ID == id {
			return i
		}
	}
	return len(catalog)
}
