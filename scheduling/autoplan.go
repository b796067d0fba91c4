/*
autoplan.go - Greedy draft generation

PURPOSE:
  Given the roster, a target week, and a staffing template, produce a
  complete candidate schedule: 14 shift slots (7 dates x AM/PM) filled by
  a priority-ordered greedy pass.

ALGORITHM:
  For each slot, independently:
    1. Walk FillOrder (cashier first, control last).
    2. For each seat the template asks of the role, collect candidates
       that are eligible for the slot, not on approved time off that
       date, list the role among their skills, and are not already in
       this slot.
    3. Pick the candidate with the lowest worker ID. Deterministic by
       decision: the same inputs always yield the same draft, which keeps
       regeneration reviewable and tests stable.
    4. Assign the period's default time block and the standard break.

  No global optimization: each slot is a best-effort single-pass cover.
  Roles with no eligible skilled candidate stay open, and the gaps
  surface later through ValidateWeek's staffing check, not here.

SEE ALSO:
  - rules.go:   IsEligible availability predicate
  - service.go: Persists a draft via the atomic ReplaceWeek
*/
package scheduling

import (
	"fmt"
	"sort"
)

// =============================================================================
// STAFFING TEMPLATE
// =============================================================================

// ShiftBlock is the default working block for one period.
type ShiftBlock struct {
	Start        ClockTime
	End          ClockTime
	BreakMinutes int
}

// StaffingTemplate parameterizes draft generation: how many of each role
// every slot needs, and the default time blocks per period.
type StaffingTemplate struct {
	MinStaff map[Role]int
	Blocks   map[SlotPeriod]ShiftBlock
}

// DefaultStaffingTemplate fills one of each role per slot, with an
// opening block for AM and a close block for PM that crosses midnight.
func DefaultStaffingTemplate() StaffingTemplate {
	return StaffingTemplate{
		MinStaff: DefaultRuleConfig().MinStaffing,
		Blocks: map[SlotPeriod]ShiftBlock{
			PeriodAM: {Start: Clock(9, 0), End: Clock(17, 0), BreakMinutes: 120},
			PeriodPM: {Start: Clock(17, 0), End: Clock(1, 0), BreakMinutes: 120},
		},
	}
}

// =============================================================================
// DRAFT RESULT
// =============================================================================

// DraftResult is the output of one generation pass. Warnings are
// advisory; a draft with staffing gaps is still returned in full.
type DraftResult struct {
	Slots       []ShiftSlot
	Assignments []Assignment
	Warnings    []string
}

// =============================================================================
// PLANNER
// =============================================================================

// Planner generates draft schedules. Stateless and safe for concurrent use.
type Planner struct {
	Engine *Engine
}

func NewPlanner(engine *Engine) *Planner {
	return &Planner{Engine: engine}
}

// GenerateDraft materializes the week's 14 slots and greedily fills them
// from the roster. timeOff lists approved days off to exclude. Pure: the
// caller persists the result (see Service.GenerateDraft for the atomic
// overwrite semantics).
func (p *Planner) GenerateDraft(workers []Worker, locationID LocationID, weekStart Date, tmpl StaffingTemplate, timeOff []TimeOffDay) DraftResult {
	// Deterministic candidate order: lowest worker ID wins ties.
	roster := make([]Worker, len(workers))
	copy(roster, workers)
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })

	off := make(map[string]bool, len(timeOff))
	for _, t := range timeOff {
		off[timeOffKey(t.WorkerID, t.Date)] = true
	}

	var result DraftResult
	openRoles := 0

	for dayIdx, date := range WeekDates(weekStart) {
		for _, period := range []SlotPeriod{PeriodAM, PeriodPM} {
			// Each slot owns its MinStaff copy so a later edit to one
			// slot cannot leak into its thirteen siblings.
			minStaff := make(map[Role]int, len(tmpl.MinStaff))
			for role, n := range tmpl.MinStaff {
				minStaff[role] = n
			}

			slot := ShiftSlot{
				ID:         slotID(locationID, weekStart, dayIdx, period),
				LocationID: locationID,
				Date:       date,
				Period:     period,
				MinStaff:   minStaff,
			}
			result.Slots = append(result.Slots, slot)

			block := tmpl.Blocks[period]
			taken := make(map[WorkerID]bool)

			for _, role := range FillOrder {
				need := minStaff[role]
				filled := 0
				for seat := 0; seat < need; seat++ {
					picked := false
					for _, w := range roster {
						if taken[w.ID] || off[timeOffKey(w.ID, date)] {
							continue
						}
						if !p.Engine.IsEligible(w, slot) {
							continue
						}
						// The planner demands an explicit skill tag; the
						// looser "no skills means capable" reading only
						// applies to validation of human edits.
						if !hasExplicitSkill(w, role) {
							continue
						}

						split := SplitHours(block.Start, block.End, block.BreakMinutes)
						result.Assignments = append(result.Assignments, Assignment{
							ID:            AssignmentID(fmt.Sprintf("%s-%s-%d", slot.ID, role, seat+1)),
							SlotID:        slot.ID,
							WorkerID:      w.ID,
							Role:          role,
							Date:          date,
							Period:        period,
							Start:         block.Start,
							End:           block.End,
							BreakMinutes:  block.BreakMinutes,
							RegularHours:  split.Regular,
							OvertimeHours: split.Overtime,
						})
						taken[w.ID] = true
						picked = true
						break
					}
					if !picked {
						// The candidate pool only shrinks within a slot:
						// when one seat stays open, the rest will too.
						break
					}
					filled++
				}
				openRoles += need - filled
			}
		}
	}

	result.Warnings = append(result.Warnings,
		"draft generated automatically, review before publishing")
	if openRoles > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d role seats left unfilled, run a week validation for details", openRoles))
	}
	return result
}

func hasExplicitSkill(w Worker, role Role) bool {
	for _, s := range w.Skills {
		if s == role || s == RoleAll {
			return true
		}
	}
	return false
}

func slotID(locationID LocationID, weekStart Date, dayIdx int, period SlotPeriod) SlotID {
	return SlotID(fmt.Sprintf("%s-%s-%d-%s", locationID, weekStart, dayIdx, period))
}

func timeOffKey(id WorkerID, d Date) string {
	return string(id) + "@" + d.String()
}
