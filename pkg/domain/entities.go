package domain

// Entity is implemented by every typed record stored in a section. The zero
// value must report the home section so generic collections can resolve it.
type Entity interface {
	SectionPath() SectionPath
}

// Referenceable entities carry a stable id that other sections may point at.
type Referenceable interface {
	Entity
	EntityID() string
}

// VentType enumerates mechanical ventilation variants.
type VentType string

// Mechanical ventilation variants. Only MVHR units carry ductwork.
const (
	VentTypeIntermittentMEV            VentType = "Intermittent MEV"
	VentTypeCentralisedContinuousMEV   VentType = "Centralised continuous MEV"
	VentTypeDecentralisedContinuousMEV VentType = "Decentralised continuous MEV"
	VentTypeMVHR                       VentType = "MVHR"
	VentTypePIV                        VentType = "PIV"
)

// DuctShape enumerates ductwork cross sections.
type DuctShape string

const (
	DuctShapeCircular    DuctShape = "circular"
	DuctShapeRectangular DuctShape = "rectangular"
)

// SpaceHeaterType enumerates wet distribution emitter variants.
type SpaceHeaterType string

const (
	SpaceHeaterRadiator SpaceHeaterType = "radiator"
	SpaceHeaterUFH      SpaceHeaterType = "ufh"
)

// HeatSourceKind tags the heat generation variants.
type HeatSourceKind string

const (
	HeatSourceHeatPump          HeatSourceKind = "heatPump"
	HeatSourceBoiler            HeatSourceKind = "boiler"
	HeatSourceHeatBattery       HeatSourceKind = "heatBattery"
	HeatSourceHeatNetwork       HeatSourceKind = "heatNetwork"
	HeatSourceHeatInterfaceUnit HeatSourceKind = "heatInterfaceUnit"
)

// HeatSource is the sealed sum of heat generation variants.
type HeatSource interface {
	Referenceable
	Kind() HeatSourceKind
	heatSource()
}

// HeatGenerator holds the fields common to every heat source variant.
type HeatGenerator struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name,omitempty"`
	ProductReference string `json:"productReference,omitempty"`
}

// EntityID implements Referenceable.
func (h HeatGenerator) EntityID() string { return h.ID }

func (HeatGenerator) heatSource() {}

// HeatPump is a heat pump heat source.
type HeatPump struct{ HeatGenerator }

// Boiler is a boiler heat source.
type Boiler struct{ HeatGenerator }

// HeatBattery is a heat battery heat source.
type HeatBattery struct{ HeatGenerator }

// HeatNetwork is a heat network heat source.
type HeatNetwork struct{ HeatGenerator }

// HeatInterfaceUnit is a heat interface unit heat source.
type HeatInterfaceUnit struct{ HeatGenerator }

func (HeatPump) SectionPath() SectionPath          { return PathHeatPump }
func (Boiler) SectionPath() SectionPath            { return PathBoiler }
func (HeatBattery) SectionPath() SectionPath       { return PathHeatBattery }
func (HeatNetwork) SectionPath() SectionPath       { return PathHeatNetwork }
func (HeatInterfaceUnit) SectionPath() SectionPath { return PathHeatInterfaceUnit }

func (HeatPump) Kind() HeatSourceKind          { return HeatSourceHeatPump }
func (Boiler) Kind() HeatSourceKind            { return HeatSourceBoiler }
func (HeatBattery) Kind() HeatSourceKind       { return HeatSourceHeatBattery }
func (HeatNetwork) Kind() HeatSourceKind       { return HeatSourceHeatNetwork }
func (HeatInterfaceUnit) Kind() HeatSourceKind { return HeatSourceHeatInterfaceUnit }

// HotWaterCylinder stores domestic hot water heated by a heat source.
type HotWaterCylinder struct {
	ID                    string   `json:"id,omitempty"`
	Name                  string   `json:"name,omitempty"`
	HeatSource            string   `json:"heatSource,omitempty" ref:"weak"`
	StorageCylinderVolume *float64 `json:"storageCylinderVolume,omitempty"`
	DailyEnergyLoss       *float64 `json:"dailyEnergyLoss,omitempty"`
}

func (HotWaterCylinder) SectionPath() SectionPath { return PathHotWaterCylinder }
func (c HotWaterCylinder) EntityID() string       { return c.ID }

// MVHRDetails are only meaningful for VentTypeMVHR units.
type MVHRDetails struct {
	MVHRLocation   string   `json:"mvhrLocation,omitempty"`
	MVHREfficiency *float64 `json:"mvhrEfficiency,omitempty"`
}

// MechanicalVentilation is a ventilation unit. MVHR variants own ductwork.
type MechanicalVentilation struct {
	ID                                 string   `json:"id,omitempty"`
	Name                               string   `json:"name,omitempty"`
	TypeOfMechanicalVentilationOptions VentType `json:"typeOfMechanicalVentilationOptions,omitempty"`
	AirFlowRate                        *float64 `json:"airFlowRate,omitempty"`
	*MVHRDetails
}

func (MechanicalVentilation) SectionPath() SectionPath { return PathMechanicalVentilation }
func (m MechanicalVentilation) EntityID() string       { return m.ID }

// IsMVHR reports whether the unit recovers heat and therefore carries ductwork.
func (m MechanicalVentilation) IsMVHR() bool {
	return m.TypeOfMechanicalVentilationOptions == VentTypeMVHR
}

// CircularDuct holds the circular cross section dimensions.
type CircularDuct struct {
	InternalDiameterOfDuctwork *float64 `json:"internalDiameterOfDuctwork,omitempty"`
	ExternalDiameterOfDuctwork *float64 `json:"externalDiameterOfDuctwork,omitempty"`
}

// RectangularDuct holds the rectangular cross section dimensions.
type RectangularDuct struct {
	DuctPerimeter *float64 `json:"ductPerimeter,omitempty"`
}

// Ductwork belongs to exactly one MVHR unit.
type Ductwork struct {
	Name                                    string    `json:"name,omitempty"`
	MVHRUnit                                string    `json:"mvhrUnit,omitempty" ref:"ownership"`
	DuctworkCrossSectionalShape             DuctShape `json:"ductworkCrossSectionalShape,omitempty"`
	DuctType                                string    `json:"ductType,omitempty"`
	InsulationThickness                     *float64  `json:"insulationThickness,omitempty"`
	LengthOfDuctwork                        *float64  `json:"lengthOfDuctwork,omitempty"`
	ThermalInsulationConductivityOfDuctwork *float64  `json:"thermalInsulationConductivityOfDuctwork,omitempty"`
	SurfaceReflectivity                     *bool     `json:"surfaceReflectivity,omitempty"`
	*CircularDuct
	*RectangularDuct
}

func (Ductwork) SectionPath() SectionPath { return PathDuctwork }

// RadiatorDetails apply to radiator emitters.
type RadiatorDetails struct {
	NumberOfRadiators *int     `json:"numberOfRadiators,omitempty"`
	Exponent          *float64 `json:"exponent,omitempty"`
	Constant          *float64 `json:"constant,omitempty"`
}

// UnderfloorHeatingDetails apply to underfloor heating emitters.
type UnderfloorHeatingDetails struct {
	EmitterFloorArea        *float64 `json:"emitterFloorArea,omitempty"`
	EquivalentThermalMass   *float64 `json:"equivalentThermalMass,omitempty"`
	SystemPerformanceFactor *float64 `json:"systemPerformanceFactor,omitempty"`
}

// WetDistribution is a wet heat emitter circuit fed by a heat source.
type WetDistribution struct {
	Name                         string          `json:"name,omitempty"`
	HeatSource                   string          `json:"heatSource,omitempty" ref:"weak"`
	ThermalMass                  *float64        `json:"thermalMass,omitempty"`
	DesignTempDiffAcrossEmitters *float64        `json:"designTempDiffAcrossEmitters,omitempty"`
	DesignFlowTemp               *float64        `json:"designFlowTemp,omitempty"`
	DesignFlowRate               *float64        `json:"designFlowRate,omitempty"`
	EcoDesignControllerClass     string          `json:"ecoDesignControllerClass,omitempty"`
	MinimumFlowTemp              *float64        `json:"minimumFlowTemp,omitempty"`
	MinOutdoorTemp               *float64        `json:"minOutdoorTemp,omitempty"`
	MaxOutdoorTemp               *float64        `json:"maxOutdoorTemp,omitempty"`
	ConvectionFractionWet        *float64        `json:"convectionFractionWet,omitempty"`
	TypeOfSpaceHeater            SpaceHeaterType `json:"typeOfSpaceHeater,omitempty"`
	*RadiatorDetails
	*UnderfloorHeatingDetails
}

func (WetDistribution) SectionPath() SectionPath { return PathWetDistribution }

// FabricElement holds the geometry shared by walls, roofs and ceilings.
type FabricElement struct {
	ID                         string   `json:"id,omitempty"`
	Name                       string   `json:"name,omitempty"`
	PitchOption                string   `json:"pitchOption,omitempty"`
	Pitch                      *float64 `json:"pitch,omitempty"`
	Orientation                *float64 `json:"orientation,omitempty"`
	Height                     *float64 `json:"height,omitempty"`
	Length                     *float64 `json:"length,omitempty"`
	ElevationalHeight          *float64 `json:"elevationalHeight,omitempty"`
	SurfaceArea                *float64 `json:"surfaceArea,omitempty"`
	SolarAbsorptionCoefficient *float64 `json:"solarAbsorptionCoefficient,omitempty"`
	UValue                     *float64 `json:"uValue,omitempty"`
	KappaValue                 *float64 `json:"kappaValue,omitempty"`
	MassDistributionClass      string   `json:"massDistributionClass,omitempty"`
}

// EntityID implements Referenceable.
func (f FabricElement) EntityID() string { return f.ID }

// ExternalWall is an external wall windows and doors can be tagged against.
type ExternalWall struct{ FabricElement }

// InternalWall separates two heated spaces.
type InternalWall struct{ FabricElement }

// WallToUnheatedSpace separates the dwelling from an unheated space.
type WallToUnheatedSpace struct {
	FabricElement
	ThermalResistanceOfAdjacentUnheatedSpace *float64 `json:"thermalResistanceOfAdjacentUnheatedSpace,omitempty"`
}

// PartyWall is shared with a neighbouring dwelling.
type PartyWall struct {
	FabricElement
	PartyWallCavityType string `json:"partyWallCavityType,omitempty"`
}

// Ceiling is an internal ceiling.
type Ceiling struct {
	FabricElement
	Type string `json:"type,omitempty"`
}

// Roof is an external roof.
type Roof struct {
	FabricElement
	TypeOfRoof string   `json:"typeOfRoof,omitempty"`
	Width      *float64 `json:"width,omitempty"`
}

func (ExternalWall) SectionPath() SectionPath        { return PathExternalWall }
func (InternalWall) SectionPath() SectionPath        { return PathInternalWall }
func (WallToUnheatedSpace) SectionPath() SectionPath { return PathWallToUnheatedSpace }
func (PartyWall) SectionPath() SectionPath           { return PathPartyWall }
func (Ceiling) SectionPath() SectionPath             { return PathCeilings }
func (Roof) SectionPath() SectionPath                { return PathRoofs }

// GroundFloor is a floor in contact with the ground.
type GroundFloor struct {
	Name                  string   `json:"name,omitempty"`
	SurfaceArea           *float64 `json:"surfaceArea,omitempty"`
	Pitch                 *float64 `json:"pitch,omitempty"`
	UValue                *float64 `json:"uValue,omitempty"`
	ThermalResistance     *float64 `json:"thermalResistance,omitempty"`
	KappaValue            *float64 `json:"kappaValue,omitempty"`
	MassDistributionClass string   `json:"massDistributionClass,omitempty"`
	Perimeter             *float64 `json:"perimeter,omitempty"`
	PsiOfWallJunction     *float64 `json:"psiOfWallJunction,omitempty"`
	ThicknessOfWalls      *float64 `json:"thicknessOfWalls,omitempty"`
	TypeOfGroundFloor     string   `json:"typeOfGroundFloor,omitempty"`
}

func (GroundFloor) SectionPath() SectionPath { return PathGroundFloor }

// Window is a glazed opening optionally tagged against a wall or roof.
type Window struct {
	Name                        string   `json:"name,omitempty"`
	TaggedItem                  string   `json:"taggedItem,omitempty" ref:"weak"`
	Orientation                 *float64 `json:"orientation,omitempty"`
	SurfaceArea                 *float64 `json:"surfaceArea,omitempty"`
	Height                      *float64 `json:"height,omitempty"`
	Width                       *float64 `json:"width,omitempty"`
	UValue                      *float64 `json:"uValue,omitempty"`
	PitchOption                 string   `json:"pitchOption,omitempty"`
	Pitch                       *float64 `json:"pitch,omitempty"`
	SolarTransmittance          *float64 `json:"solarTransmittance,omitempty"`
	ElevationalHeight           *float64 `json:"elevationalHeight,omitempty"`
	MidHeight                   *float64 `json:"midHeight,omitempty"`
	OpeningToFrameRatio         *float64 `json:"openingToFrameRatio,omitempty"`
	NumberOpenableParts         string   `json:"numberOpenableParts,omitempty"`
	CurtainsOrBlinds            *bool    `json:"curtainsOrBlinds,omitempty"`
	TreatmentType               string   `json:"treatmentType,omitempty"`
	ThermalResistivityIncrease  *float64 `json:"thermalResistivityIncrease,omitempty"`
	SolarTransmittanceReduction *float64 `json:"solarTransmittanceReduction,omitempty"`
}

func (Window) SectionPath() SectionPath { return PathWindows }

// Door holds the fields shared by external door variants.
type Door struct {
	Name              string   `json:"name,omitempty"`
	AssociatedItemID  string   `json:"associatedItemId,omitempty" ref:"weak"`
	PitchOption       string   `json:"pitchOption,omitempty"`
	Pitch             *float64 `json:"pitch,omitempty"`
	Orientation       *float64 `json:"orientation,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	Width             *float64 `json:"width,omitempty"`
	ElevationalHeight *float64 `json:"elevationalHeight,omitempty"`
	SurfaceArea       *float64 `json:"surfaceArea,omitempty"`
	UValue            *float64 `json:"uValue,omitempty"`
}

// ExternalUnglazedDoor is a solid external door.
type ExternalUnglazedDoor struct {
	Door
	SolarAbsorptionCoefficient *float64 `json:"solarAbsorptionCoefficient,omitempty"`
	KappaValue                 *float64 `json:"kappaValue,omitempty"`
	MassDistributionClass      string   `json:"massDistributionClass,omitempty"`
}

// ExternalGlazedDoor is a glazed external door.
type ExternalGlazedDoor struct {
	Door
	SolarTransmittance  *float64 `json:"solarTransmittance,omitempty"`
	MidHeight           *float64 `json:"midHeight,omitempty"`
	OpeningToFrameRatio *float64 `json:"openingToFrameRatio,omitempty"`
	NumberOpenableParts string   `json:"numberOpenableParts,omitempty"`
}

func (ExternalUnglazedDoor) SectionPath() SectionPath { return PathExternalUnglazedDoor }
func (ExternalGlazedDoor) SectionPath() SectionPath   { return PathExternalGlazedDoor }

// PVSystem is a photovoltaic array.
type PVSystem struct {
	Name                string   `json:"name,omitempty"`
	PeakPower           *float64 `json:"peakPower,omitempty"`
	VentilationStrategy string   `json:"ventilationStrategy,omitempty"`
	Pitch               *float64 `json:"pitch,omitempty"`
	Orientation         *float64 `json:"orientation,omitempty"`
	ElevationalHeight   *float64 `json:"elevationalHeight,omitempty"`
	LengthOfPV          *float64 `json:"lengthOfPV,omitempty"`
	WidthOfPV           *float64 `json:"widthOfPV,omitempty"`
	InverterPeakPowerAC *float64 `json:"inverterPeakPowerAC,omitempty"`
	InverterPeakPowerDC *float64 `json:"inverterPeakPowerDC,omitempty"`
	InverterIsInside    *bool    `json:"inverterIsInside,omitempty"`
	InverterType        string   `json:"inverterType,omitempty"`
}

func (PVSystem) SectionPath() SectionPath { return PathPVSystems }

// Entities returns a zero value of every typed entity.
func Entities() []Entity {
	return []Entity{
		HeatPump{},
		Boiler{},
		HeatBattery{},
		HeatNetwork{},
		HeatInterfaceUnit{},
		HotWaterCylinder{},
		MechanicalVentilation{},
		Ductwork{},
		WetDistribution{},
		ExternalWall{},
		InternalWall{},
		WallToUnheatedSpace{},
		PartyWall{},
		Ceiling{},
		Roof{},
		GroundFloor{},
		Window{},
		ExternalUnglazedDoor{},
		ExternalGlazedDoor{},
		PVSystem{},
	}
}

var (
	_ HeatSource    = HeatPump{}
	_ HeatSource    = Boiler{}
	_ HeatSource    = HeatBattery{}
	_ HeatSource    = HeatNetwork{}
	_ HeatSource    = HeatInterfaceUnit{}
	_ Referenceable = HotWaterCylinder{}
	_ Referenceable = MechanicalVentilation{}
	_ Referenceable = ExternalWall{}
	_ Referenceable = Roof{}
)
