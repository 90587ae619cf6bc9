package domain

// Top-level domains of the assessment document.
const (
	DomainDwellingDetails            = "dwellingDetails"
	DomainDwellingFabric             = "dwellingFabric"
	DomainDomesticHotWater           = "domesticHotWater"
	DomainInfiltrationAndVentilation = "infiltrationAndVentilation"
	DomainHeatingSystems             = "heatingSystems"
	DomainPVAndBatteries             = "pvAndBatteries"
)

// Section paths for the repeatable item lists.
const (
	PathShading SectionPath = "dwellingDetails/shading"

	PathGroundFloor           SectionPath = "dwellingFabric/dwellingSpaceFloors/dwellingSpaceGroundFloor"
	PathInternalFloor         SectionPath = "dwellingFabric/dwellingSpaceFloors/dwellingSpaceInternalFloor"
	PathExposedFloor          SectionPath = "dwellingFabric/dwellingSpaceFloors/dwellingSpaceExposedFloor"
	PathExternalWall          SectionPath = "dwellingFabric/dwellingSpaceWalls/dwellingSpaceExternalWall"
	PathInternalWall          SectionPath = "dwellingFabric/dwellingSpaceWalls/dwellingSpaceInternalWall"
	PathWallToUnheatedSpace   SectionPath = "dwellingFabric/dwellingSpaceWalls/dwellingSpaceWallToUnheatedSpace"
	PathPartyWall             SectionPath = "dwellingFabric/dwellingSpaceWalls/dwellingSpacePartyWall"
	PathCeilings              SectionPath = "dwellingFabric/dwellingSpaceCeilingsAndRoofs/dwellingSpaceCeilings"
	PathRoofs                 SectionPath = "dwellingFabric/dwellingSpaceCeilingsAndRoofs/dwellingSpaceRoofs"
	PathExternalUnglazedDoor  SectionPath = "dwellingFabric/dwellingSpaceDoors/dwellingSpaceExternalUnglazedDoor"
	PathExternalGlazedDoor    SectionPath = "dwellingFabric/dwellingSpaceDoors/dwellingSpaceExternalGlazedDoor"
	PathInternalDoor          SectionPath = "dwellingFabric/dwellingSpaceDoors/dwellingSpaceInternalDoor"
	PathWindows               SectionPath = "dwellingFabric/dwellingSpaceWindows"
	PathLinearThermalBridges  SectionPath = "dwellingFabric/dwellingSpaceThermalBridging/dwellingSpaceLinearThermalBridges"
	PathPointThermalBridges   SectionPath = "dwellingFabric/dwellingSpaceThermalBridging/dwellingSpacePointThermalBridges"
	PathHotWaterCylinder      SectionPath = "domesticHotWater/waterHeating/hotWaterCylinder"
	PathImmersionHeater       SectionPath = "domesticHotWater/waterHeating/immersionHeater"
	PathMixedShower           SectionPath = "domesticHotWater/hotWaterOutlets/mixedShower"
	PathElectricShower        SectionPath = "domesticHotWater/hotWaterOutlets/electricShower"
	PathBath                  SectionPath = "domesticHotWater/hotWaterOutlets/bath"
	PathOtherOutlets          SectionPath = "domesticHotWater/hotWaterOutlets/otherOutlets"
	PathPrimaryPipework       SectionPath = "domesticHotWater/pipework/primaryPipework"
	PathSecondaryPipework     SectionPath = "domesticHotWater/pipework/secondaryPipework"
	PathWWHRS                 SectionPath = "domesticHotWater/wwhrs"
	PathMechanicalVentilation SectionPath = "infiltrationAndVentilation/mechanicalVentilation"
	PathDuctwork              SectionPath = "infiltrationAndVentilation/ductwork"
	PathVents                 SectionPath = "infiltrationAndVentilation/vents"
	PathHeatPump              SectionPath = "heatingSystems/heatGeneration/heatPump"
	PathBoiler                SectionPath = "heatingSystems/heatGeneration/boiler"
	PathHeatBattery           SectionPath = "heatingSystems/heatGeneration/heatBattery"
	PathHeatNetwork           SectionPath = "heatingSystems/heatGeneration/heatNetwork"
	PathHeatInterfaceUnit     SectionPath = "heatingSystems/heatGeneration/heatInterfaceUnit"
	PathWetDistribution       SectionPath = "heatingSystems/heatEmitting/wetDistribution"
	PathInstantElectricHeater SectionPath = "heatingSystems/heatEmitting/instantElectricHeater"
	PathElectricStorageHeater SectionPath = "heatingSystems/heatEmitting/electricStorageHeater"
	PathWarmAirHeatPump       SectionPath = "heatingSystems/heatEmitting/warmAirHeatPump"
	PathPVSystems             SectionPath = "pvAndBatteries/pvSystems"
	PathElectricBattery       SectionPath = "pvAndBatteries/electricBattery"
)

// HeatSourcePaths lists every heat generation section whose ids may be referenced
// by hot water storage and wet distribution.
var HeatSourcePaths = []SectionPath{
	PathHeatPump,
	PathBoiler,
	PathHeatBattery,
	PathHeatNetwork,
	PathHeatInterfaceUnit,
}

// TaggableFabricPaths lists the wall, roof and ceiling sections that windows and
// doors may be tagged against.
var TaggableFabricPaths = []SectionPath{
	PathExternalWall,
	PathInternalWall,
	PathWallToUnheatedSpace,
	PathPartyWall,
	PathCeilings,
	PathRoofs,
}
