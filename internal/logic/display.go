package logic

import "fmt"

// DisplayWidth is the character width of one display line.
const DisplayWidth = 16

// DisplayLines formats the two-line summary of a cycle.
// Line one: soil, pump, publish status, persistence status.
// Line two: temperature, humidity, fan.
func DisplayLines(rec CycleRecord) (string, string) {
	soil := "?"
	if rec.Reading.SoilValid {
		soil = "W"
		if rec.Reading.SoilDry {
			soil = "D"
		}
	}
	line1 := fmt.Sprintf("S=%s P=%s A=%s D=%s",
		soil, flag(rec.Actuators.PumpOn), rec.Publish.Code(), rec.Persist.Code())

	temp := "--"
	if t := rec.Reading.DisplayTemperature(); t.Valid {
		temp = fmt.Sprintf("%d", int(t.Value))
	}
	hum := "--"
	if rec.Reading.Humidity.Valid {
		hum = fmt.Sprintf("%d", int(rec.Reading.Humidity.Value))
	}
	fan := flag(rec.Actuators.FanOn)
	if rec.FanStatus == StateUnknown {
		fan = "?"
	}
	line2 := fmt.Sprintf("T=%s H=%s F=%s", temp, hum, fan)

	return Truncate(line1), Truncate(line2)
}

// Truncate cuts s to DisplayWidth characters.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) > DisplayWidth {
		return string(r[:DisplayWidth])
	}
	return s
}

func flag(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
